// Package server assembles the HTTP routing table and middleware chain.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/camwillm/Cenarium/internal/config"
	"github.com/camwillm/Cenarium/internal/handlers"
	"github.com/camwillm/Cenarium/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the chi router serving the catalog API
func NewRouter(
	cfg config.CORSConfig,
	catalogHandler *handlers.CatalogHandler,
	healthHandler *handlers.HealthHandler,
	log *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// The catalog is read-only, so only GET and preflight are allowed
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, "NotFound", log)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", log)
	})

	// Register health check endpoint
	r.Get("/health", healthHandler.ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/items", catalogHandler.ListItems)
		r.Get("/items/{category}", catalogHandler.GetCategory)
		r.Get("/categories", catalogHandler.ListCategories)
	})

	return r
}
