package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"gamehub/internal/access"
)

// accessTokenCookie carries the access token for browser clients.
const accessTokenCookie = "access_token_cookie"

func (app *application) BasicAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Basic" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is malformed"))
				return
			}

			decoded, err := base64.StdEncoding.DecodeString(parts[1])
			if err != nil {
				app.unauthorizedBasicErrorResponse(w, r, err)
				return
			}

			username := app.config.Auth.Basic.User
			pass := app.config.Auth.Basic.Pass

			creds := strings.SplitN(string(decoded), ":", 2)
			if pass == "" || len(creds) != 2 || creds[0] != username || creds[1] != pass {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("invalid credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the access token from the Authorization header, or
// from the access token cookie when no header is sent.
func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		cookie, err := r.Cookie(accessTokenCookie)
		if err != nil || cookie.Value == "" {
			return "", errors.New("authorization header is missing")
		}
		return cookie.Value, nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.New("authorization header is malformed")
	}
	return parts[1], nil
}

// AuthTokenMiddleware verifies the bearer token and stores the caller in the
// request context. It does not look the user up; handlers that need the user
// record load it themselves.
func (app *application) AuthTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}

		userID, err := app.authenticator.VerifyToken(token)
		if err != nil {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}

		ctx := access.WithCaller(r.Context(), &access.Caller{UserID: userID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}

		if allow, retryAfter := app.rateLimiter.Allow(ip); !allow {
			app.rateLimitExceededResponse(w, r, retryAfter)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authorize runs the access gate for a mutation of target and writes the
// error response when it is denied.
func (app *application) authorize(w http.ResponseWriter, r *http.Request, kind access.Kind, target access.Owned) bool {
	err := access.Authorize(access.CallerFromContext(r.Context()), access.PolicyFor(kind), target)
	switch {
	case err == nil:
		return true
	case errors.Is(err, access.ErrUnauthenticated):
		app.unauthorizedErrorResponse(w, r, err)
	case errors.Is(err, access.ErrForbidden):
		app.forbiddenResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
	return false
}

// callerID returns the id of the authenticated caller. Only valid behind
// AuthTokenMiddleware.
func callerID(r *http.Request) (int64, bool) {
	caller := access.CallerFromContext(r.Context())
	if caller == nil {
		return 0, false
	}
	return caller.UserID, true
}
