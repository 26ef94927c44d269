// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "coalhub"

// Metrics holds the counters and histograms updated by the record service and
// the HTTP middleware.
type Metrics struct {
	// labels: operation={create,update,recompute,delete,attach}
	Records             *prometheus.CounterVec
	AggregationErrors   prometheus.Counter
	AggregationDuration prometheus.Histogram
	// labels: method, route, status
	HTTPRequests *prometheus.CounterVec
}

func newMetrics() *Metrics {
	return &Metrics{
		Records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Testing record operations by kind.",
		}, []string{"operation"}),
		AggregationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregation_errors_total",
			Help:      "Weighted average computations rejected by validation.",
		}),
		AggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of a weighted average computation.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
	}
}

// New creates and registers all metrics with the default Prometheus registry.
func New() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Records,
		m.AggregationErrors,
		m.AggregationDuration,
		m.HTTPRequests,
	)
	return m
}

// NewForTesting creates Metrics that are not registered anywhere, so tests
// can create as many as they like.
func NewForTesting() *Metrics {
	return newMetrics()
}
