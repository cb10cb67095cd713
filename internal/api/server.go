// Package api implements the HTTP layer: the webhook entry point (spec.md
// §4.1), the health check, and the Prometheus metrics endpoint (SPEC_FULL.md
// DOMAIN STACK). Handlers are methods on *Server, the same one-struct-many-
// handler-files layout the teacher uses.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fin-sync/payments-backend/internal/dedupcache"
	"github.com/fin-sync/payments-backend/internal/metrics"
	"github.com/fin-sync/payments-backend/internal/queue"
	"github.com/fin-sync/payments-backend/internal/store"
)

// Config holds the values the HTTP layer needs from the environment.
type Config struct {
	// StripeWebhookSecret is the signing secret from the provider dashboard.
	StripeWebhookSecret string

	// Env is "production", "staging", or "development" — only affects which
	// slog handler main installs, not read here.
	Env string
}

// Server holds the dependencies every handler file shares. Each handler
// attaches methods to this type and uses only the fields it needs.
type Server struct {
	store   *store.Store
	queue   *queue.Queue
	metrics *metrics.Registry
	cache   *dedupcache.Cache

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. reg and cache
// may both be nil — metrics become no-ops and the dedup fast path is
// skipped, falling straight through to Postgres's own uniqueness check.
func NewServer(st *store.Store, qu *queue.Queue, reg *metrics.Registry, cache *dedupcache.Cache, cfg Config, logger *slog.Logger) http.Handler {
	s := &Server{
		store:   st,
		queue:   qu,
		metrics: reg,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health check (spec.md §6).
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Operational metrics — ambient tooling, not the "reporting" named in
	// spec.md's non-goals.
	r.Handle("/metrics", promhttp.Handler())

	// Webhook entry point (spec.md §4.1, §6).
	r.Post("/webhook", s.handleWebhook)

	return r
}
