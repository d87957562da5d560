package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamehub/docs" //this is required to generate swagger docs
	"gamehub/internal/auth"
	"gamehub/internal/domain/storage"
	"gamehub/internal/mailer"
	"gamehub/internal/notifications"
	"gamehub/internal/ratelimiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         *storage.Container
	logger        *zap.SugaredLogger
	authenticator auth.Authenticator
	mailer        mailer.Client
	avatars       avatarUploader
	rateLimiter   ratelimiter.Limiter
	notifier      notifications.Publisher
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true, // access_token_cookie
		MaxAge:           300,
	}))

	if app.rateLimiter != nil {
		r.Use(app.RateLimiterMiddleware)
	}

	r.Use(middleware.Timeout(60 * time.Second))

	r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
	r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api", func(r chi.Router) {
		r.Get("/hello", app.helloHandler)
		r.Post("/hello", app.helloHandler)

		r.Post("/login", app.loginHandler)
		r.Post("/logout", app.logoutHandler)
		r.Post("/signup", app.signupHandler)

		r.Get("/users", app.listUsersHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)

			r.Get("/current-user", app.currentUserHandler)
			r.Put("/update-avatar", app.updateAvatarHandler)
			if app.avatars != nil {
				r.Post("/update-avatar/upload", app.uploadAvatarHandler)
			}

			r.Post("/push-tokens", app.savePushTokenHandler)
			r.Delete("/push-tokens", app.removePushTokenHandler)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.With(app.AuthTokenMiddleware).Get("/", app.listMyReviewsHandler)
			// {id} is a game id on GET/POST and a review id on PUT/DELETE
			r.Get("/{id}", app.listGameReviewsHandler)
			r.With(app.AuthTokenMiddleware).Post("/{id}", app.createReviewHandler)
			r.Put("/{id}", app.updateReviewHandler)
			r.Delete("/{id}", app.deleteReviewHandler)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", app.listEventsHandler)
			r.Post("/", app.createEventHandler)
			r.Route("/{eventID}", func(r chi.Router) {
				r.Get("/", app.getEventHandler)
				r.Put("/", app.updateEventHandler)
				r.Delete("/", app.deleteEventHandler)
				r.Get("/attendees", app.listAttendeesHandler)
				r.With(app.AuthTokenMiddleware).Post("/attend", app.attendEventHandler)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", app.listPostsHandler)
			r.With(app.AuthTokenMiddleware).Post("/", app.createPostHandler)
			r.Route("/{postID}", func(r chi.Router) {
				r.Get("/", app.getPostHandler)
				r.With(app.AuthTokenMiddleware).Put("/", app.updatePostHandler)
				r.With(app.AuthTokenMiddleware).Delete("/", app.deletePostHandler)
				r.Get("/comments", app.listCommentsHandler)
				r.With(app.AuthTokenMiddleware).Post("/comments", app.createCommentHandler)
			})
		})

		r.Route("/comments/{commentID}", func(r chi.Router) {
			r.Get("/", app.getCommentHandler)
			r.With(app.AuthTokenMiddleware).Put("/", app.updateCommentHandler)
			r.With(app.AuthTokenMiddleware).Delete("/", app.deleteCommentHandler)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.APIURL
	docs.SwaggerInfo.BasePath = "/api"

	srv := &http.Server{
		Addr:         app.config.Addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.Addr, "env", app.config.Env)

	return nil
}
