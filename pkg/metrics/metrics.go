package metrics

import (
	"runtime"
	"time"

	"github.com/solflu/outbreak/pkg/simulation"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordStep records one simulation step for a session
func (r *Registry) RecordStep(session, status string, duration time.Duration) {
	r.SimulationStepsTotal.WithLabelValues(session, status).Inc()
	r.SimulationStepDuration.WithLabelValues(session).Observe(duration.Seconds())
}

// UpdateSessionState reflects a session's latest snapshot into the gauges
func (r *Registry) UpdateSessionState(session string, snapshot *simulation.Snapshot) {
	r.SimulationCountriesTotal.WithLabelValues(session).Set(float64(len(snapshot.Countries)))
	r.SimulationInfectedTotal.WithLabelValues(session).Set(snapshot.GlobalStats.TotalInfected)
	r.SimulationRecoveredTotal.WithLabelValues(session).Set(snapshot.GlobalStats.TotalRecovered)
	r.SimulationInfectionRate.WithLabelValues(session).Set(snapshot.GlobalStats.InfectionRate)
	r.SimulationActiveRoutes.WithLabelValues(session).Set(float64(len(snapshot.ActiveRoutes)))
	r.CurrentStrain.WithLabelValues(session).Set(float64(snapshot.MutationState.Strain))
}

// RecordMutation counts a strain mutation for a session
func (r *Registry) RecordMutation(session string) {
	r.MutationsTotal.WithLabelValues(session).Inc()
}

// RecordBroadcast records a published state broadcast
func (r *Registry) RecordBroadcast(session, reason string, sizeBytes int) {
	r.BroadcastsTotal.WithLabelValues(session, reason).Inc()
	r.BroadcastSizeBytes.Observe(float64(sizeBytes))
}

// RecordBroadcastError counts a failed broadcast
func (r *Registry) RecordBroadcastError() {
	r.BroadcastErrorsTotal.Inc()
}

// RecordTranslatorRequest records a market translator round trip
func (r *Registry) RecordTranslatorRequest(status string, duration time.Duration) {
	r.TranslatorRequestsTotal.WithLabelValues(status).Inc()
	r.TranslatorRequestDuration.Observe(duration.Seconds())
}

// RecordTranslatorFallback counts a fall back to default parameters
func (r *Registry) RecordTranslatorFallback() {
	r.TranslatorFallbacksTotal.Inc()
}

// SessionStarted / SessionStopped track the active session gauge
func (r *Registry) SessionStarted() {
	r.SimulationSessionsActive.Inc()
}

func (r *Registry) SessionStopped() {
	r.SimulationSessionsActive.Dec()
}

// UpdateSystemMetrics refreshes process-level gauges
func (r *Registry) UpdateSystemMetrics(startTime time.Time) {
	r.UptimeSeconds.Set(time.Since(startTime).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	r.MemoryAllocBytes.Set(float64(memStats.Alloc))
	r.MemorySysBytes.Set(float64(memStats.Sys))
}
