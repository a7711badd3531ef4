package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimulationMetrics() {
	r.SimulationStepsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbreak_simulation_steps_total",
			Help: "Total number of simulation steps executed",
		},
		[]string{"session", "status"},
	)

	r.SimulationStepDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outbreak_simulation_step_duration_seconds",
			Help:    "Simulation step latency in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"session"},
	)

	r.SimulationSessionsActive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "outbreak_simulation_sessions_active",
			Help: "Number of simulation sessions currently running",
		},
	)

	r.SimulationCountriesTotal = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "outbreak_simulation_countries_total",
			Help: "Number of countries registered in a session",
		},
		[]string{"session"},
	)

	r.SimulationInfectedTotal = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "outbreak_simulation_infected_total",
			Help: "Total infected population across all countries in a session",
		},
		[]string{"session"},
	)

	r.SimulationRecoveredTotal = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "outbreak_simulation_recovered_total",
			Help: "Total recovered population across all countries in a session",
		},
		[]string{"session"},
	)

	r.SimulationInfectionRate = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "outbreak_simulation_infection_rate",
			Help: "Global infection rate (infected over population) of a session",
		},
		[]string{"session"},
	)

	r.SimulationActiveRoutes = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "outbreak_simulation_active_routes",
			Help: "Number of active transmission routes in a session",
		},
		[]string{"session"},
	)

	r.MutationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbreak_mutations_total",
			Help: "Total number of pathogen mutations",
		},
		[]string{"session"},
	)

	r.CurrentStrain = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "outbreak_current_strain",
			Help: "Current strain number of a session",
		},
		[]string{"session"},
	)

	r.BroadcastsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbreak_broadcasts_total",
			Help: "Total number of state broadcasts",
		},
		[]string{"session", "reason"},
	)

	r.BroadcastSizeBytes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "outbreak_broadcast_size_bytes",
			Help:    "Compressed broadcast payload size in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000},
		},
	)

	r.BroadcastErrorsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "outbreak_broadcast_errors_total",
			Help: "Total number of failed state broadcasts",
		},
	)

	r.TranslatorRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbreak_translator_requests_total",
			Help: "Total number of market translator requests",
		},
		[]string{"status"},
	)

	r.TranslatorRequestDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "outbreak_translator_request_duration_seconds",
			Help:    "Market translator request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	r.TranslatorFallbacksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "outbreak_translator_fallbacks_total",
			Help: "Times the simulation fell back to default parameters",
		},
	)
}
