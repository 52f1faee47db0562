// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector aggregates the service's Prometheus metrics.
type Collector struct {
	syncRuns        prometheus.Counter
	syncSkips       prometheus.Counter
	syncFailures    prometheus.Counter
	itemsSynced     prometheus.Counter
	providerFails   *prometheus.CounterVec
	searchFallbacks prometheus.Counter
	httpStatus      *prometheus.CounterVec
	httpLatency     prometheus.Histogram
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		syncRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentsearch_sync_runs_total",
			Help: "Completed sync passes.",
		}),
		syncSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentsearch_sync_skips_total",
			Help: "Sync attempts skipped because a pass was already in flight.",
		}),
		syncFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentsearch_sync_failures_total",
			Help: "Sync passes aborted by a persistence failure.",
		}),
		itemsSynced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentsearch_items_synced_total",
			Help: "Content items processed by sync passes.",
		}),
		providerFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contentsearch_provider_fetch_failures_total",
			Help: "Per-provider fetch failures.",
		}, []string{"provider"}),
		searchFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentsearch_search_fallbacks_total",
			Help: "Keyword searches served by the store because the index was unavailable or failed.",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contentsearch_http_status_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "contentsearch_http_latency_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.syncRuns,
		c.syncSkips,
		c.syncFailures,
		c.itemsSynced,
		c.providerFails,
		c.searchFallbacks,
		c.httpStatus,
		c.httpLatency,
	)

	return c
}

func (c *Collector) SyncCompleted(items int) {
	c.syncRuns.Inc()
	c.itemsSynced.Add(float64(items))
}

func (c *Collector) SyncSkipped() {
	c.syncSkips.Inc()
}

func (c *Collector) SyncFailed() {
	c.syncFailures.Inc()
}

func (c *Collector) ProviderFetchFailed(provider string) {
	c.providerFails.WithLabelValues(provider).Inc()
}

func (c *Collector) SearchFellBack() {
	c.searchFallbacks.Inc()
}

func (c *Collector) RecordHTTP(statusCode int, duration time.Duration) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

// Handler returns the scrape endpoint handler for reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
