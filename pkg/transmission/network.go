package transmission

import (
	"github.com/solflu/outbreak/pkg/logging"
)

// SIRCounts is the view of a country's compartments the network needs to
// compute cross-country flow.
type SIRCounts struct {
	Susceptible float64
	Infected    float64
}

// Network owns the directed routes between countries. It keeps a flat route
// list plus a source-indexed bucket per country; both are updated atomically
// on add, so every route always appears in its source's bucket in insertion
// order.
type Network struct {
	routes   []*Route
	outbound map[string][]*Route
	logger   logging.Logger
}

// NewNetwork creates an empty route network.
func NewNetwork(logger logging.Logger) *Network {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Network{
		outbound: make(map[string][]*Route),
		logger:   logger.With(logging.Component("transmission")),
	}
}

// AddRoute appends a new route. The network does not validate that either
// endpoint exists; that is the caller's concern. Optional geographic points
// are applied when both are supplied.
func (n *Network) AddRoute(source, target string, routeType RouteType, sourcePoint, targetPoint *Point) *Route {
	route := NewRoute(source, target, routeType)
	if sourcePoint != nil && targetPoint != nil {
		route.SetPoints(*sourcePoint, *targetPoint)
	}

	n.routes = append(n.routes, route)
	n.outbound[source] = append(n.outbound[source], route)

	n.logger.Info("route added",
		logging.RouteID(source, target),
		logging.String("type", string(routeType)),
	)
	return route
}

// Routes returns every route in insertion order.
func (n *Network) Routes() []*Route {
	return n.routes
}

// Outbound returns the outbound routes of a country in insertion order.
// Unknown ids yield an empty slice.
func (n *Network) Outbound(countryID string) []*Route {
	return n.outbound[countryID]
}

// ActiveRoutes returns all currently active routes.
func (n *Network) ActiveRoutes() []*Route {
	active := make([]*Route, 0, len(n.routes))
	for _, route := range n.routes {
		if route.Active {
			active = append(active, route)
		}
	}
	return active
}

// ActivateRoute activates the first route from source to target.
// Returns false if no such route exists.
func (n *Network) ActivateRoute(source, target string) bool {
	for _, route := range n.outbound[source] {
		if route.Target == target {
			route.Activate()
			n.logger.Info("route activated", logging.RouteID(source, target))
			return true
		}
	}
	return false
}

// DeactivateRoute deactivates the first route from source to target.
// Returns false if no such route exists.
func (n *Network) DeactivateRoute(source, target string) bool {
	for _, route := range n.outbound[source] {
		if route.Target == target {
			route.Deactivate()
			n.logger.Info("route deactivated", logging.RouteID(source, target))
			return true
		}
	}
	return false
}

// RoutePoints returns the geographic endpoints of the first route from source
// to target.
func (n *Network) RoutePoints(source, target string) (Point, Point, bool) {
	for _, route := range n.outbound[source] {
		if route.Target == target {
			return route.SourcePoint, route.TargetPoint, true
		}
	}
	return Point{}, Point{}, false
}

// UpdateIntensities applies a single network-wide intensity scalar to every
// route. Per-route differentiation is a possible later refinement.
func (n *Network) UpdateIntensities(intensity float64) {
	for _, route := range n.routes {
		route.Intensity = intensity
	}
}

// CalculateTransmissions computes the total infection inflow per target
// country across all routes. Routes whose source or target is missing from
// the supplied countries map are skipped, which keeps the computation safe
// against partial snapshots. Inactive routes contribute nothing through
// their own transmission calculation.
func (n *Network) CalculateTransmissions(countries map[string]SIRCounts, resistanceFactors map[RouteType]float64) map[string]float64 {
	inflow := make(map[string]float64)

	for _, route := range n.routes {
		source, ok := countries[route.Source]
		if !ok {
			continue
		}
		target, ok := countries[route.Target]
		if !ok {
			continue
		}

		flow := route.CalculateTransmission(source.Infected, target.Susceptible, resistanceFactors)
		inflow[route.Target] += flow
	}

	return inflow
}
