package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Simulation Metrics
	SimulationStepsTotal     *prometheus.CounterVec
	SimulationStepDuration   *prometheus.HistogramVec
	SimulationSessionsActive prometheus.Gauge
	SimulationCountriesTotal *prometheus.GaugeVec
	SimulationInfectedTotal  *prometheus.GaugeVec
	SimulationRecoveredTotal *prometheus.GaugeVec
	SimulationInfectionRate  *prometheus.GaugeVec
	SimulationActiveRoutes   *prometheus.GaugeVec
	MutationsTotal           *prometheus.CounterVec
	CurrentStrain            *prometheus.GaugeVec

	// Broadcast Metrics
	BroadcastsTotal      *prometheus.CounterVec
	BroadcastSizeBytes   prometheus.Histogram
	BroadcastErrorsTotal prometheus.Counter

	// Translator Metrics
	TranslatorRequestsTotal   *prometheus.CounterVec
	TranslatorRequestDuration prometheus.Histogram
	TranslatorFallbacksTotal  prometheus.Counter

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	// Initialize all metrics
	r.initHTTPMetrics()
	r.initSimulationMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
