package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dashboard"

// Metrics holds the dashboard's Prometheus collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	queryFetches  *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	cacheHits     *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	pageRenders   *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queryFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_fetches_total",
			Help:      "Upstream fetches per query key and outcome.",
		}, []string{"query", "outcome"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_fetch_duration_seconds",
			Help:      "Time spent fetching a query, retries included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_hits_total",
			Help:      "Queries served from cache per source (memory, store).",
		}, []string{"query", "source"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_invalidations_total",
			Help:      "Cache invalidations per query key.",
		}, []string{"query"}),
		pageRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_renders_total",
			Help:      "Dashboard renders by state (ok, error).",
		}, []string{"state"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.queryFetches,
		m.queryDuration,
		m.cacheHits,
		m.invalidations,
		m.pageRenders,
	)
	return m
}

// ObserveFetch records one completed fetch of a query
func (m *Metrics) ObserveFetch(key string, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.queryFetches.WithLabelValues(key, outcome).Inc()
	m.queryDuration.WithLabelValues(key).Observe(elapsed.Seconds())
}

// ObserveCacheHit records a query answered without an upstream fetch
func (m *Metrics) ObserveCacheHit(key, source string) {
	m.cacheHits.WithLabelValues(key, source).Inc()
}

// ObserveInvalidation records a cache invalidation
func (m *Metrics) ObserveInvalidation(key string) {
	m.invalidations.WithLabelValues(key).Inc()
}

// ObserveRender records a dashboard render
func (m *Metrics) ObserveRender(failed bool) {
	state := "ok"
	if failed {
		state = "error"
	}
	m.pageRenders.WithLabelValues(state).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
