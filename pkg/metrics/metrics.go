// Package metrics defines the Prometheus metric collectors used across the
// services and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SearchQueriesTotal   *prometheus.CounterVec
	SearchLatency        *prometheus.HistogramVec
	SearchCandidates     prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	PagesLoadedTotal     prometheus.Counter
	DictionaryTerms      prometheus.Gauge
	AuthorityIterations  prometheus.Counter
	AuthoritySolveTime   prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by result type (hit, zero_result, error).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		SearchCandidates: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_candidates_count",
				Help:    "Number of candidate pages considered per query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of query cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of query cache misses.",
			},
		),
		PagesLoadedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "corpus_pages_loaded_total",
				Help: "Total pages loaded into the index at startup.",
			},
		),
		DictionaryTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dictionary_terms",
				Help: "Number of distinct terms in the term dictionary.",
			},
		),
		AuthorityIterations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "authority_iterations_total",
				Help: "Total authority solver iterations executed.",
			},
		),
		AuthoritySolveTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "authority_solve_duration_seconds",
				Help:    "Wall-clock duration of a full authority solve.",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60},
			},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchCandidates,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.PagesLoadedTotal,
		m.DictionaryTerms,
		m.AuthorityIterations,
		m.AuthoritySolveTime,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
