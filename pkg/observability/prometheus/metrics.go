package prometheus

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DefaultRegistry is the default Prometheus registry
	DefaultRegistry = prometheus.NewRegistry()

	// DefaultRegisterer is the default Prometheus registerer
	DefaultRegisterer = prometheus.WrapRegistererWith(prometheus.Labels{"service": "isopod"}, DefaultRegistry)

	metricsOnce sync.Once
	metrics     *Metrics
)

// Metrics holds all Prometheus metrics for the coordinator
type Metrics struct {
	// Spawn metrics
	SpawnsTotal        *prometheus.CounterVec // kind: oneshot, persistent
	SpawnFailuresTotal prometheus.Counter

	// Request metrics
	RequestsTotal   *prometheus.CounterVec // outcome: ok, payload_error, timeout, worker_closed
	RequestDuration *prometheus.HistogramVec

	// Pool gauges
	ActiveWorkers   prometheus.Gauge
	PendingRequests prometheus.Gauge
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = NewMetrics(DefaultRegisterer)
	})
	return metrics
}

// NewMetrics creates a new metrics collection registered on registerer
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = DefaultRegisterer
	}

	return &Metrics{
		SpawnsTotal: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "isopod_spawns_total",
				Help: "Total number of worker spawns",
			},
			[]string{"kind"}, // kind: oneshot, persistent
		),
		SpawnFailuresTotal: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "isopod_spawn_failures_total",
				Help: "Total number of failed spawn attempts",
			},
		),
		RequestsTotal: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "isopod_requests_total",
				Help: "Total number of correlated requests by outcome",
			},
			[]string{"outcome"}, // outcome: ok, payload_error, timeout, worker_closed
		),
		RequestDuration: promauto.With(registerer).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "isopod_request_duration_seconds",
				Help:    "Request round-trip duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"}, // kind: oneshot, call
		),
		ActiveWorkers: promauto.With(registerer).NewGauge(
			prometheus.GaugeOpts{
				Name: "isopod_active_workers",
				Help: "Number of live persistent workers",
			},
		),
		PendingRequests: promauto.With(registerer).NewGauge(
			prometheus.GaugeOpts{
				Name: "isopod_pending_requests",
				Help: "Number of in-flight correlated requests",
			},
		),
	}
}
