// Package server exposes dashboard sessions over an HTTP JSON API.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/flightdelay/internal/classify"
	"github.com/sells-group/flightdelay/internal/dashboard"
)

// Options configures the API.
type Options struct {
	// RateLimit is requests per second per client; 0 disables limiting.
	RateLimit   float64
	RateBurst   int
	CORSOrigins []string
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Off, the rate limiter keys on the TCP peer.
	TrustProxy bool
	// Thresholds feed the KPI card sublabels.
	Thresholds classify.Thresholds
}

// Server routes API requests to a session manager.
type Server struct {
	manager *dashboard.Manager
	opts    Options
	router  chi.Router
}

// New builds the router.
func New(m *dashboard.Manager, opts Options) *Server {
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	s := &Server{manager: m, opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	if opts.RateLimit > 0 {
		r.Use(newRateLimiter(opts.RateLimit, opts.RateBurst, 10*time.Minute).middleware)
	}

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/domains", s.handleDomains)
		r.Post("/reload", s.handleReload)
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Put("/filters/{dimension}", s.handleSetFilter)
			r.Get("/report", s.handleReport)
			r.Get("/map", s.handleMap)
		})
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
