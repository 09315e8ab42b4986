// Package api serves the watchlist over HTTP with the chi router.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/schema"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the HTTP surface.
type Options struct {
	CORSOrigins []string
	RateLimit   int // requests per RateWindow and caller; zero disables limiting
	RateWindow  time.Duration
}

// OptionsFromConfig extracts the HTTP options from the validated application config.
func OptionsFromConfig(cfg *contract.Config) Options {
	return Options{
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
		RateWindow:  cfg.RateWindow,
	}
}

// NewRouter builds the chi router for the list service.
func NewRouter(svc contract.ListService, opts Options) http.Handler {
	h := NewHandler(svc)
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = contract.DefaultRateWindow
	}

	r := chi.NewRouter()

	// Applied to ALL routes in order
	r.Use(requestIDWithLogging)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(recoverer)
	r.Use(corsHandler(opts.CORSOrigins)) // CORS must be global to handle OPTIONS preflight
	r.Use(prometheusMetrics)
	r.Use(rateLimiter(opts.RateLimit, opts.RateWindow))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, string(schema.KindNotFound), MsgRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", MsgMethodBlocked)
	})

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/my-list", func(r chi.Router) {
		r.Post("/", h.AddToList)
		r.Get("/", h.GetMyList)
		r.Delete("/{contentId}", h.RemoveFromList)
	})

	return r
}
