package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	UserHandler   *UserHandler
	AuthHandler   *AuthHandler
	HealthHandler *HealthHandler
	Metrics       *Metrics
	Logger        zerolog.Logger
}

// NewRouter builds the HTTP router with all API routes and middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(Recoverer(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	// Liveness and readiness (no auth)
	r.Get("/", cfg.HealthHandler.Root)
	r.Get("/health", cfg.HealthHandler.Health)
	r.Get("/ready", cfg.HealthHandler.Ready)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", cfg.UserHandler.Create)
		r.Get("/", cfg.UserHandler.List)
		r.Get("/email/{email}", cfg.UserHandler.GetByEmail)
		r.Get("/{id}", cfg.UserHandler.GetByID)
		r.Put("/{id}", cfg.UserHandler.Update)
		r.Delete("/{id}", cfg.UserHandler.Delete)
	})

	r.Post("/auth/login", cfg.AuthHandler.Login)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusNotFound, "not_found", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	return r
}
