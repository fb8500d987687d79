package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the process's prometheus collectors
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	keywordCandidates  prometheus.Histogram
	semanticCandidates prometheus.Histogram
	rankedResults      prometheus.Histogram
}

// NewMetrics creates and registers all collectors on a fresh registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recall_http_requests_total",
			Help: "HTTP requests by method, route, and status",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recall_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		keywordCandidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recall_keyword_candidates",
			Help:    "Candidates produced by the keyword finder per request",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		semanticCandidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recall_semantic_candidates",
			Help:    "Candidates produced by the semantic finder per request",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),
		rankedResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recall_ranked_results",
			Help:    "Results surviving ranking per request",
			Buckets: prometheus.LinearBuckets(0, 1, 8),
		}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.keywordCandidates,
		m.semanticCandidates,
		m.rankedResults,
	)
	return m
}

// ObserveRetrieval records the shape of one retrieval request
func (m *Metrics) ObserveRetrieval(keyword, semantic, ranked int) {
	m.keywordCandidates.Observe(float64(keyword))
	m.semanticCandidates.Observe(float64(semantic))
	m.rankedResults.Observe(float64(ranked))
}

// Handler returns the /metrics endpoint handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware instruments HTTP handlers with request metrics. The
// route label is the chi pattern, not the raw path, to keep
// cardinality bounded.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
			m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
