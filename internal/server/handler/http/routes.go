package http

import (
	"net/http"

	"github.com/akarpov/newsline/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter constructs the HTTP handler serving the JSON API.
//
// Routes:
//
//	POST /api/create_account  → authHandler.Register
//	POST /api/login           → authHandler.Login
//	POST /api/logout          → authHandler.Logout
//	POST /api/submit          → newsHandler.Submit
//	GET  /api/user/{username} → authHandler.Profile
//	GET  /api/news/{id}       → newsHandler.Get
//
// Middleware chain (applied in order):
//  1. cors.Handler                 — the API is driven from in-page scripts
//  2. WithRequestLogging(logger)   — logs each request with an id
//  3. WithSession(sessions)        — resolves the auth token to a user
//  4. AllowContentType (POST only) — rejects non-JSON bodies
func NewRouter(
	authHandler *AuthHandler,
	newsHandler *NewsHandler,
	sessions middleware.SessionResolver,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", middleware.AuthHeader},
		AllowCredentials: false,
	}))
	r.Use(middleware.WithRequestLogging(logger))
	// Identity is established once per request; handlers read it from the
	// context and never see the raw token.
	r.Use(middleware.WithSession(sessions))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/create_account", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/submit", newsHandler.Submit)
		})

		r.Post("/logout", authHandler.Logout)
		r.Get("/user/{username}", authHandler.Profile)
		r.Get("/news/{id}", newsHandler.Get)
	})

	return r
}
