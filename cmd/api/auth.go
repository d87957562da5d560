package main

import (
	"errors"
	"net/http"
	"strings"

	"gamehub/internal/domain/users"
	"gamehub/internal/mailer"
)

// ErrorBadRequestResponse represents the standard error format for bad request API responses.
//
//	@name			ErrorBadRequestResponse
//	@description	Standard error response format returned by all bad request API endpoints
type ErrorBadRequestResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"It show error from err.Error()"`
	Status  int    `json:"status" example:"400"`
}

// ErrorInternalServerResponse represents the standard error format for internal server API responses.
//
//	@name			ErrorInternalServerResponse
//	@description	Standard error response format returned by all internal server error API endpoints
type ErrorInternalServerResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"the server encountered a problem"`
	Status  int    `json:"status" example:"500"`
}

type SignupPayload struct {
	Username string `json:"username" validate:"omitempty,max=20"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,max=72"`
}

type SignupResponse struct {
	User *users.User `json:"user"`
}

// signupHandler godoc
//
//	@Summary		Registers a user
//	@Description	Creates an account. A welcome email is sent in the background when mail is configured.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		SignupPayload				true	"User credentials"
//	@Success		200		{object}	SignupResponse				"User registered"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Missing field or duplicate email/username"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Router			/signup [post]
func (app *application) signupHandler(w http.ResponseWriter, r *http.Request) {
	var payload SignupPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	payload.Email = strings.TrimSpace(payload.Email)
	payload.Username = strings.TrimSpace(payload.Username)
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := &users.User{Email: payload.Email}
	if payload.Username != "" {
		user.Username = &payload.Username
	}
	if err := user.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.Create(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, users.ErrDuplicateEmail), errors.Is(err, users.ErrDuplicateUsername):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.sendWelcomeEmail(user)

	if err := writeJSON(w, http.StatusOK, SignupResponse{User: user}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) sendWelcomeEmail(user *users.User) {
	if app.mailer == nil {
		return
	}

	name := user.Email
	if user.Username != nil {
		name = *user.Username
	}
	vars := struct {
		Username string
		LoginURL string
	}{
		Username: name,
		LoginURL: app.config.FrontendURL + "/login",
	}

	go func() {
		status, err := app.mailer.Send(mailer.UserWelcomeTemplate, name, user.Email, vars)
		if err != nil {
			app.logger.Errorw("error sending welcome email", "user_id", user.ID, "error", err)
			return
		}
		app.logger.Infow("Email sent", "status code", status, "user_id", user.ID)
	}()
}

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// loginHandler godoc
//
//	@Summary		Login to get a token
//	@Description	Verifies the credentials and returns an access token. The token is also set as an HttpOnly cookie for browsers.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		LoginPayload			true	"User credentials"
//	@Success		200		{object}	TokenResponse			"Access token"
//	@Failure		400		{object}	ErrorBadRequestResponse	"Malformed body"
//	@Failure		401		{object}	error					"Wrong email or password"
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Router			/login [post]
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if payload.Email == "" || payload.Password == "" {
		app.unauthorizedErrorResponse(w, r, users.ErrInvalidCredentials)
		return
	}

	user, err := app.store.Users.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrInvalidCredentials):
			app.unauthorizedErrorResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	token, err := app.authenticator.GenerateToken(user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.setAccessTokenCookie(w, token)

	if err := writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// logoutHandler godoc
//
//	@Summary		Logout
//	@Description	Clears the access token cookie. Bearer tokens stay valid until they expire.
//	@Tags			authentication
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/logout [post]
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	app.clearAccessTokenCookie(w)

	if err := writeJSON(w, http.StatusOK, map[string]string{"msg": "logged out"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CurrentUserResponse struct {
	CurrentUser *users.User `json:"current_user"`
}

// currentUserHandler godoc
//
//	@Summary		Get current user
//	@Tags			users
//	@Produce		json
//	@Success		200	{object}	CurrentUserResponse
//	@Failure		401	{object}	error	"Missing or invalid token, or the user no longer exists"
//	@Security		ApiKeyAuth
//	@Router			/current-user [get]
func (app *application) currentUserHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := app.loadCaller(w, r)
	if !ok {
		return
	}

	if err := writeJSON(w, http.StatusOK, CurrentUserResponse{CurrentUser: user}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// loadCaller fetches the authenticated caller's user record. A token whose
// user was deleted is treated as unauthenticated.
func (app *application) loadCaller(w http.ResponseWriter, r *http.Request) (*users.User, bool) {
	id, ok := callerID(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errors.New("missing caller"))
		return nil, false
	}

	user, err := app.store.Users.GetByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			app.unauthorizedErrorResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return nil, false
	}
	return user, true
}

func (app *application) setAccessTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   app.config.Env == "production",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(app.config.Auth.Token.Exp.Seconds()),
	})
}

func (app *application) clearAccessTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   app.config.Env == "production",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
