// Package metrics provides the centralized Prometheus metrics registry for the simulator.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	SimulationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "choice_sim",
		Name:      "simulations_total",
		Help:      "Total number of probability computations run",
	})
	SimulationErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "choice_sim",
		Name:      "simulation_errors_total",
		Help:      "Total number of failed computations by fault kind",
	}, []string{"kind"})
	ObservationsProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "choice_sim",
		Name:      "observations_processed_total",
		Help:      "Total number of observations evaluated",
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "choice_sim",
		Name:      "cache_hits_total",
		Help:      "Total number of scenario cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "choice_sim",
		Name:      "cache_misses_total",
		Help:      "Total number of scenario cache misses",
	})
	StreamBatchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "choice_sim",
		Name:      "stream_batches_total",
		Help:      "Total number of observation batches received on the stream",
	})
)

// Gauge metrics
var (
	LastRunObservations = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "choice_sim",
		Name:      "last_run_observations",
		Help:      "Observation count of the most recent run per scenario",
	}, []string{"scenario"})
	LastRunAlternatives = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "choice_sim",
		Name:      "last_run_alternatives",
		Help:      "Alternative count of the most recent run per scenario",
	}, []string{"scenario"})
)

// Histogram metrics
var (
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "choice_sim",
		Name:      "simulation_duration_seconds",
		Help:      "Duration of probability computations in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(SimulationsTotal)
		registry.MustRegister(SimulationErrorsTotal)
		registry.MustRegister(ObservationsProcessedTotal)
		registry.MustRegister(CacheHitsTotal)
		registry.MustRegister(CacheMissesTotal)
		registry.MustRegister(StreamBatchesTotal)

		// Register gauge metrics
		registry.MustRegister(LastRunObservations)
		registry.MustRegister(LastRunAlternatives)

		// Register histogram metrics
		registry.MustRegister(SimulationDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSimulation records a completed computation.
func RecordSimulation(scenario string, observations, alternatives int, durationSeconds float64) {
	SimulationsTotal.Inc()
	SimulationDuration.Observe(durationSeconds)
	ObservationsProcessedTotal.Add(float64(observations))
	LastRunObservations.WithLabelValues(scenario).Set(float64(observations))
	LastRunAlternatives.WithLabelValues(scenario).Set(float64(alternatives))
}

// RecordSimulationError records a failed computation by fault kind.
func RecordSimulationError(kind string) {
	SimulationErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheHit records a scenario cache hit.
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a scenario cache miss.
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordStreamBatch records a received observation batch.
func RecordStreamBatch() {
	StreamBatchesTotal.Inc()
}
