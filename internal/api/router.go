package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"contentsearch/internal/metrics"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Searcher Searcher
	Syncer   Syncer
	Metrics  *metrics.Collector
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(metricsMiddleware(deps.Metrics))

	h := NewHandler(deps.Searcher, deps.Syncer, deps.Logger)

	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Registry))

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", h.Search)
		r.Get("/contents/{id}", h.GetContent)

		// GET kept alongside POST so a browser can trigger a pass.
		r.Get("/providers/sync", h.Sync)
		r.Post("/providers/sync", h.Sync)
	})

	return r
}

func metricsMiddleware(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			collector.RecordHTTP(ww.Status(), time.Since(start))
		})
	}
}
