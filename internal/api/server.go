// Package api provides the HTTP API server and handlers for the events catalogue.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/CheongSzesuen/eventsWeb/internal/catalog"
	"github.com/CheongSzesuen/eventsWeb/internal/config"
	"github.com/CheongSzesuen/eventsWeb/internal/fetch"
	"github.com/CheongSzesuen/eventsWeb/internal/ratelimit"
	"github.com/CheongSzesuen/eventsWeb/internal/search"
	"github.com/CheongSzesuen/eventsWeb/internal/store"
	"github.com/CheongSzesuen/eventsWeb/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	catalog     *catalog.Catalog
	searchIndex *search.Index
	store       *store.Store
	fetcher     *fetch.Fetcher
	validator   *validation.Validator
	limiter     *ratelimit.KeyedRateLimiter
	router      *chi.Mux
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cat *catalog.Catalog, searchIndex *search.Index, st *store.Store, fetcher *fetch.Fetcher, cfg *config.Config, logger *slog.Logger) *Server {
	s := &Server{
		catalog:     cat,
		searchIndex: searchIndex,
		store:       st,
		fetcher:     fetcher,
		validator:   validation.New(),
		limiter:     ratelimit.New(cfg.Submit.RPS, cfg.Submit.Burst),
		router:      chi.NewRouter(),
		logger:      logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases handler resources (the submit rate limiter).
func (s *Server) Close() {
	s.limiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// The dataset is public and read-mostly; allow any origin.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.handleGetEvents)

			r.Route("/provinces", func(r chi.Router) {
				r.Get("/{provinceID}", s.handleGetProvince)
				r.Get("/{provinceID}/{cityID}", s.handleGetCity)
				r.Get("/{provinceID}/{cityID}/schools", s.handleGetSchools)
			})

			// Community contributions, rate limited per IP.
			r.With(RateLimitMiddleware(s.limiter, s.logger)).
				Post("/submit", s.handleSubmitEvent)
		})

		r.Get("/search", s.handleSearch)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/refresh", s.handleRefresh)
			r.Get("/submissions", s.handleListSubmissions)
			r.Post("/submissions/{id}/status", s.handleUpdateSubmissionStatus)
		})
	})
}
