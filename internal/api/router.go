package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"tablekeep/internal/metrics"
	"tablekeep/internal/middleware"
)

// RouterConfig holds everything the top-level router needs besides the handler.
type RouterConfig struct {
	Validator      middleware.JWTValidator
	Actors         middleware.ActorResolver
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	RateLimit      middleware.RateLimitConfig
	AllowedOrigins []string
	// Ping reports database health for /healthz. Nil means always healthy.
	Ping   func(ctx context.Context) error
	Logger *slog.Logger
}

// NewRouter builds the HTTP router. Public endpoints are /healthz and
// /metrics; everything under /v1 requires a Bearer token. Background work
// started by the middleware stops when ctx is cancelled.
func NewRouter(ctx context.Context, h *Handler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Instrument(cfg.Metrics, logger.With("component", "http")))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimiter(ctx, cfg.RateLimit))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ping != nil {
			pctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.Ping(pctx); err != nil {
				logger.WarnContext(r.Context(), "health check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(cfg.Gatherer))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.Validator, cfg.Actors, logger))
		h.Routes(r)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorBody{Code: http.StatusNotFound, Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorBody{Code: http.StatusMethodNotAllowed, Message: "method not allowed"})
	})
	return r
}
