// Package metrics exposes Prometheus collectors for the mirror service.
// Every method is safe on a nil *Metrics so callers can run without metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors registered by the service.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	UpstreamFetches *prometheus.CounterVec
	LoadRuns        *prometheus.CounterVec
	LoadedRecords   *prometheus.GaugeVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests handled",
		}, []string{"method", "route", "status"}),

		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time taken to handle HTTP requests",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}, []string{"method", "route"}),

		UpstreamFetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "upstream_fetches_total",
			Help: "Total number of requests sent to the upstream API",
		}, []string{"resource", "outcome"}),

		LoadRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "data_load_runs_total",
			Help: "Total number of data load runs",
		}, []string{"outcome"}),

		LoadedRecords: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "data_load_records",
			Help: "Records inserted per collection by the last successful load",
		}, []string{"collection"}),
	}
}

// ObserveHTTP records one handled request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveFetch records one upstream request.
func (m *Metrics) ObserveFetch(resource string, err error) {
	if m == nil {
		return
	}
	m.UpstreamFetches.WithLabelValues(resource, outcome(err)).Inc()
}

// ObserveLoad records a load run and, on success, the inserted counts.
func (m *Metrics) ObserveLoad(users, posts, comments int, err error) {
	if m == nil {
		return
	}
	m.LoadRuns.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return
	}
	m.LoadedRecords.WithLabelValues("users").Set(float64(users))
	m.LoadedRecords.WithLabelValues("posts").Set(float64(posts))
	m.LoadedRecords.WithLabelValues("comments").Set(float64(comments))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
