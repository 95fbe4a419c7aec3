package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the toolkit server.
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// State sync Metrics
	StateSavesTotal    prometheus.CounterVec
	StateFlushesTotal  prometheus.CounterVec
	StateFlushFailures prometheus.Counter
	StateFlushPending  prometheus.Gauge

	// Business Metrics
	ProjectionsComputedTotal prometheus.Counter
	CheckInsRecordedTotal    prometheus.Counter
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolkit_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolkit_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "toolkit_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// State sync Metrics
		StateSavesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolkit_state_saves_total",
				Help: "Total trendline state writes by origin",
			},
			[]string{"origin"},
		),
		StateFlushesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolkit_state_flushes_total",
				Help: "Total remote state flushes by trigger",
			},
			[]string{"trigger"},
		),
		StateFlushFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "toolkit_state_flush_failures_total",
				Help: "Total remote state flushes that failed",
			},
		),
		StateFlushPending: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "toolkit_state_flush_pending",
				Help: "Number of users with a debounced flush scheduled",
			},
		),

		// Business Metrics
		ProjectionsComputedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "toolkit_projections_computed_total",
				Help: "Total race-day projections computed",
			},
		),
		CheckInsRecordedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "toolkit_checkins_recorded_total",
				Help: "Total pace check-ins recorded",
			},
		),
	}
}
