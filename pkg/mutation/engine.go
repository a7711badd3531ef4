package mutation

import (
	"math/rand"
	"time"

	"github.com/solflu/outbreak/pkg/logging"
	"github.com/solflu/outbreak/pkg/transmission"
)

// Thresholds control when a mutation becomes likely.
type Thresholds struct {
	// InfectionRate above which mutations become more likely
	InfectionRate float64
	// RecoveryRate above which mutations are suppressed
	RecoveryRate float64
	// BaseChance is the per-step mutation probability before modifiers
	BaseChance float64
}

// DefaultThresholds returns the standard mutation thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		InfectionRate: 0.3,
		RecoveryRate:  0.2,
		BaseChance:    0.01,
	}
}

// Stats is the aggregate view the engine needs to evaluate a mutation.
type Stats struct {
	InfectionRate float64
	Timestamp     float64
}

// Event records a single mutation in the pathogen's history.
type Event struct {
	Strain              int     `json:"strain"`
	Timestamp           float64 `json:"timestamp"`
	GlobalInfectionRate float64 `json:"global_infection_rate"`
}

// State is the externally visible mutation state.
type State struct {
	Strain            int                                `json:"strain"`
	ResistanceFactors map[transmission.RouteType]float64 `json:"resistance_factors"`
	MutationCount     int                                `json:"mutation_count"`
}

// Engine tracks the pathogen's strain and per-route-type resistance, and
// decides stochastic mutation events. Strain numbers only ever increase;
// there is no terminal strain.
type Engine struct {
	strain     int
	resistance map[transmission.RouteType]float64
	history    []Event
	thresholds Thresholds
	rng        *rand.Rand
	logger     logging.Logger
}

// NewEngine creates a mutation engine at strain 0 with zero resistance.
// A nil rng falls back to a time-seeded source; inject a fixed seed for
// deterministic replay.
func NewEngine(rng *rand.Rand, logger logging.Logger) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Engine{
		resistance: map[transmission.RouteType]float64{
			transmission.RouteAir:  0.0,
			transmission.RouteSea:  0.0,
			transmission.RouteLand: 0.0,
		},
		thresholds: DefaultThresholds(),
		rng:        rng,
		logger:     logger.With(logging.Component("mutation")),
	}
}

// ShouldMutate decides whether conditions are right for a mutation this step.
// The decision is probabilistic: the base chance rises with high global
// infection and falls with high recovery. A nil stats view never mutates.
func (e *Engine) ShouldMutate(stats *Stats, recoveryRate float64) bool {
	if stats == nil {
		return false
	}

	chance := e.thresholds.BaseChance

	if stats.InfectionRate > e.thresholds.InfectionRate {
		chance *= 1 + stats.InfectionRate
	}
	if recoveryRate > e.thresholds.RecoveryRate {
		chance *= 1 - recoveryRate*0.5
	}

	return e.rng.Float64() < chance
}

// Mutate advances to the next strain, records the event, and jitters each
// route type's resistance by a uniform adjustment in [-0.1, +0.1], clamped
// to [0, 1].
func (e *Engine) Mutate(stats *Stats) {
	e.strain++

	event := Event{Strain: e.strain}
	if stats != nil {
		event.Timestamp = stats.Timestamp
		event.GlobalInfectionRate = stats.InfectionRate
	}
	e.history = append(e.history, event)

	for routeType := range e.resistance {
		adjustment := (e.rng.Float64() - 0.5) * 0.2
		e.resistance[routeType] = clamp(e.resistance[routeType]+adjustment, 0.0, 1.0)
	}

	e.logger.Info("pathogen mutated", logging.Strain(e.strain))
	e.logger.Debug("new resistance factors", logging.Any("resistance", e.resistance))
}

// ScaleInfectionRate applies the current strain's infectivity bonus to an
// infection rate: each strain adds 5% on top of the base.
func (e *Engine) ScaleInfectionRate(rate float64) float64 {
	return rate * (1.0 + float64(e.strain)*0.05)
}

// Strain returns the current strain number.
func (e *Engine) Strain() int {
	return e.strain
}

// ResistanceFactors returns a copy of the per-route-type resistance.
func (e *Engine) ResistanceFactors() map[transmission.RouteType]float64 {
	factors := make(map[transmission.RouteType]float64, len(e.resistance))
	for routeType, value := range e.resistance {
		factors[routeType] = value
	}
	return factors
}

// History returns a copy of the mutation event history in order.
func (e *Engine) History() []Event {
	history := make([]Event, len(e.history))
	copy(history, e.history)
	return history
}

// State returns the externally visible mutation state.
func (e *Engine) State() State {
	return State{
		Strain:            e.strain,
		ResistanceFactors: e.ResistanceFactors(),
		MutationCount:     len(e.history),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
