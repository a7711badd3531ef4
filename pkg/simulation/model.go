// Package simulation implements the epidemic state-update engine: per-step
// SIR integration for every country, route-based cross-country transmission,
// infection-radius route activation, and stochastic pathogen mutation.
//
// A Model is a pure, synchronous, in-memory state machine. It provides no
// internal locking; the caller must guarantee at most one writer at a time
// (one driving loop per model instance).
package simulation

import (
	"math/rand"
	"sort"
	"time"

	"github.com/solflu/outbreak/pkg/logging"
	"github.com/solflu/outbreak/pkg/mutation"
	"github.com/solflu/outbreak/pkg/transmission"
)

const (
	// baseDt is the integration time step before the speed multiplier.
	baseDt = 0.1
	// baseBeta is the base infection rate before the parameter modifier.
	baseBeta = 0.3
	// radiusScale converts the infected fraction into a geographic reach.
	radiusScale = 0.1
	// seedSize is the fixed infected count injected when a route activates.
	seedSize = 100.0
	// seedThreshold: targets already carrying this many infected are not seeded.
	seedThreshold = 100.0
	// conservationTolerance is the absolute drift allowed in S+I+R vs population.
	conservationTolerance = 1.0
)

// RoutePair identifies a directed route by its endpoints. Using a structured
// key avoids delimiter collisions that a concatenated string id would invite.
type RoutePair struct {
	Source string
	Target string
}

// String renders the pair in the external "source-target" form.
func (p RoutePair) String() string {
	return p.Source + "-" + p.Target
}

// Model owns all country states, the route network, and the mutation engine.
// Each Model instance is fully self-contained; multiple simulations can run
// side by side without shared state.
type Model struct {
	countries map[string]*Country
	network   *transmission.Network
	engine    *mutation.Engine
	activated map[RoutePair]struct{}
	elapsed   float64
	rng       *rand.Rand
	logger    logging.Logger
}

// Option configures a Model at construction.
type Option func(*Model)

// WithLogger sets the model's logger.
func WithLogger(logger logging.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

// WithRand injects the random source used for mutation draws. Injecting a
// fixed seed makes runs replayable.
func WithRand(rng *rand.Rand) Option {
	return func(m *Model) { m.rng = rng }
}

// New creates an empty model.
func New(opts ...Option) *Model {
	m := &Model{
		countries: make(map[string]*Country),
		activated: make(map[RoutePair]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.DefaultLogger()
	}
	m.logger = m.logger.With(logging.Component("simulation"))
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	m.network = transmission.NewNetwork(m.logger)
	m.engine = mutation.NewEngine(m.rng, m.logger)
	return m
}

// AddCountry registers a country with initial conditions. Population is
// required and must be positive. Susceptible starts at population minus
// infected. Registering an existing id overwrites it silently.
func (m *Model) AddCountry(id string, seed CountrySeed) error {
	if seed.Population <= 0 {
		return &MissingFieldError{Field: "population"}
	}

	resistance := seed.Resistance
	if resistance == nil {
		resistance = DefaultResistance()
	}
	location := transmission.Point{}
	if seed.Location != nil {
		location = *seed.Location
	}

	m.countries[id] = &Country{
		Population:  seed.Population,
		Susceptible: seed.Population - seed.Infected,
		Infected:    seed.Infected,
		Recovered:   seed.Recovered,
		Resistance:  resistance,
		Location:    location,
	}

	m.logger.Info("country added", logging.CountryID(id), logging.Float64("population", seed.Population))
	return nil
}

// AddRoute creates an explicitly requested route between two registered
// countries and opens it immediately, bypassing radius-based activation.
// Unregistered endpoints or a duplicate (source,target) pair make this a
// warned no-op; the return value reports whether the route was added.
func (m *Model) AddRoute(source, target string, routeType transmission.RouteType) bool {
	src, okSource := m.countries[source]
	tgt, okTarget := m.countries[target]
	if !okSource || !okTarget {
		m.logger.Warn("cannot add route: endpoint not registered", logging.RouteID(source, target))
		return false
	}

	pair := RoutePair{Source: source, Target: target}
	if _, exists := m.activated[pair]; exists {
		m.logger.Warn("cannot add route: pair already routed", logging.RouteID(source, target))
		return false
	}

	route := m.network.AddRoute(source, target, routeType, &src.Location, &tgt.Location)
	route.Activate()
	m.activated[pair] = struct{}{}
	return true
}

// Network exposes the route network for dormant-route setup and inspection.
// Routes added here directly stay subject to radius-based activation.
func (m *Model) Network() *transmission.Network {
	return m.network
}

// CountryCount returns the number of registered countries.
func (m *Model) CountryCount() int {
	return len(m.countries)
}

// GlobalStats recomputes the aggregate statistics from current country data.
func (m *Model) GlobalStats() GlobalStats {
	return computeGlobalStats(m.countries, m.elapsed)
}

// Snapshot is a read-only copy of the complete model state.
type Snapshot struct {
	Countries     map[string]CountrySnapshot `json:"countries"`
	GlobalStats   GlobalStats                `json:"global_stats"`
	MutationState mutation.State             `json:"mutation_state"`
	ActiveRoutes  []string                   `json:"active_routes"`
}

// State returns a snapshot of all countries, aggregate stats, mutation state,
// and the activated-route set. Nothing in the returned value aliases model
// state, so callers may hold or mutate it freely.
func (m *Model) State() Snapshot {
	countries := make(map[string]CountrySnapshot, len(m.countries))
	for id, country := range m.countries {
		countries[id] = country.snapshot()
	}

	routes := make([]string, 0, len(m.activated))
	for pair := range m.activated {
		routes = append(routes, pair.String())
	}
	sort.Strings(routes)

	return Snapshot{
		Countries:     countries,
		GlobalStats:   m.GlobalStats(),
		MutationState: m.engine.State(),
		ActiveRoutes:  routes,
	}
}
