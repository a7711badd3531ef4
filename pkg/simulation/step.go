package simulation

import (
	"math"

	"github.com/solflu/outbreak/pkg/logging"
	"github.com/solflu/outbreak/pkg/mutation"
	"github.com/solflu/outbreak/pkg/transmission"
)

// routeResistanceFactors is the flat per-type resistance applied to
// cross-country flow.
func routeResistanceFactors() map[transmission.RouteType]float64 {
	factors := make(map[transmission.RouteType]float64, len(transmission.RouteTypes))
	for _, routeType := range transmission.RouteTypes {
		factors[routeType] = 0.5
	}
	return factors
}

// sirState is a country's compartments frozen at the start of a step.
type sirState struct {
	S, I, R, N float64
}

// pendingUpdate is a country's computed post-step state, committed only once
// every country has been processed cleanly.
type pendingUpdate struct {
	S, I, R float64
	radius  float64
}

// Step advances the model one tick:
//
//  1. aggregate stats are computed pre-step
//  2. the mutation engine may mutate and scale the infection rate
//  3. route intensities are set network-wide
//  4. each country's SIR compartments integrate forward from a pre-step
//     snapshot, with infection-radius route activation and fixed-size
//     seeding of newly reached targets
//  5. cross-country flows are computed over active routes and merged in
//  6. all updates commit together, then conservation is enforced
//
// Computing from the snapshot means every country transitions from the same
// starting instant regardless of iteration order. A failure on any country
// aborts the step before any compartment is committed; route activations
// recorded earlier in the failed step are kept.
func (m *Model) Step(params Parameters) error {
	stats := m.GlobalStats()
	p := params.normalized()

	engineStats := &mutation.Stats{
		InfectionRate: stats.InfectionRate,
		Timestamp:     stats.Timestamp,
	}
	if m.engine.ShouldMutate(engineStats, p.RecoveryRate) {
		m.engine.Mutate(engineStats)
		p.InfectionRate = m.engine.ScaleInfectionRate(p.InfectionRate)
	}

	m.network.UpdateIntensities(p.TransmissionIntensity)

	effectiveDt := baseDt * p.SpeedMultiplier
	effectiveBeta := baseBeta * p.InfectionRate

	pre := make(map[string]sirState, len(m.countries))
	for id, country := range m.countries {
		pre[id] = sirState{
			S: country.Susceptible,
			I: country.Infected,
			R: country.Recovered,
			N: country.Population,
		}
	}

	updates := make(map[string]pendingUpdate, len(m.countries))
	seeded := make(map[string]struct{})

	for id, country := range m.countries {
		state := pre[id]
		if state.N <= 0 {
			return &StepError{CountryID: id, Err: errNoPopulation}
		}

		internalTransmission := effectiveBeta * state.S * state.I / state.N
		radius := math.Sqrt(state.I/state.N) * radiusScale

		m.checkRouteActivation(id, country.Location, radius, pre, seeded)

		dS := -internalTransmission
		dI := internalTransmission - p.RecoveryRate*state.I
		dR := p.RecoveryRate * state.I

		update := pendingUpdate{
			S:      math.Max(0, state.S+dS*effectiveDt),
			I:      math.Max(0, state.I+dI*effectiveDt),
			R:      math.Max(0, state.R+dR*effectiveDt),
			radius: radius,
		}
		if !finite(update.S) || !finite(update.I) || !finite(update.R) {
			return &StepError{CountryID: id, Err: errNonFinite}
		}
		updates[id] = update
	}

	// Fixed-size seeding of targets newly reached through route activation.
	for id := range seeded {
		update := updates[id]
		update.I += seedSize
		update.S -= seedSize
		updates[id] = update
	}

	counts := make(map[string]transmission.SIRCounts, len(pre))
	for id, state := range pre {
		counts[id] = transmission.SIRCounts{Susceptible: state.S, Infected: state.I}
	}
	for id, flow := range m.network.CalculateTransmissions(counts, routeResistanceFactors()) {
		update, ok := updates[id]
		if !ok {
			continue
		}
		// Susceptible may dip below zero here; conservation handles the drift.
		update.I += flow
		update.S -= flow
		updates[id] = update
	}

	for id, update := range updates {
		country := m.countries[id]
		country.Susceptible = update.S
		country.Infected = update.I
		country.Recovered = update.R
		country.InfectionRadius = update.radius
		m.enforceConservation(id, country)
	}

	m.elapsed += effectiveDt
	return nil
}

// checkRouteActivation tests each not-yet-activated outbound route against
// the country's infection radius. A reached route is permanently activated
// and its target, if still below the seeding threshold, is marked for one
// fixed-size seeding event.
func (m *Model) checkRouteActivation(id string, location transmission.Point, radius float64, pre map[string]sirState, seeded map[string]struct{}) {
	for _, route := range m.network.Outbound(id) {
		pair := RoutePair{Source: route.Source, Target: route.Target}
		if _, done := m.activated[pair]; done {
			continue
		}

		if distance(location, route.SourcePoint) > radius {
			continue
		}

		m.activated[pair] = struct{}{}
		route.Activate()
		m.logger.Info("route activated by infection radius",
			logging.RouteID(route.Source, route.Target),
			logging.Float64("radius", radius),
		)

		if _, done := seeded[route.Target]; done {
			continue
		}
		if target, ok := pre[route.Target]; ok && target.I < seedThreshold {
			seeded[route.Target] = struct{}{}
		}
	}
}

// enforceConservation rescales the compartments when S+I+R drifts from the
// population by more than the tolerance. Sub-threshold drift is left alone.
func (m *Model) enforceConservation(id string, country *Country) {
	total := country.Susceptible + country.Infected + country.Recovered
	drift := math.Abs(total - country.Population)
	if drift <= conservationTolerance {
		return
	}
	if total <= 0 {
		m.logger.Warn("population conservation unrecoverable",
			logging.CountryID(id),
			logging.Float64("total", total),
		)
		return
	}

	m.logger.Warn("population conservation drift",
		logging.CountryID(id),
		logging.Float64("drift", drift),
	)
	scale := country.Population / total
	country.Susceptible *= scale
	country.Infected *= scale
	country.Recovered *= scale
}

func distance(a, b transmission.Point) float64 {
	dx := a.Lng - b.Lng
	dy := a.Lat - b.Lat
	return math.Sqrt(dx*dx + dy*dy)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
