package transmission

// RouteType identifies the mode of a transmission route. The set is closed:
// adding a type requires extending base rates and default resistances together.
type RouteType string

const (
	RouteAir  RouteType = "air"
	RouteSea  RouteType = "sea"
	RouteLand RouteType = "land"
)

// RouteTypes lists every valid route type.
var RouteTypes = []RouteType{RouteAir, RouteSea, RouteLand}

// baseRates holds the fixed per-type transmission rates. Air is the fastest
// channel, sea the slowest, land in between.
var baseRates = map[RouteType]float64{
	RouteAir:  0.3,
	RouteSea:  0.1,
	RouteLand: 0.2,
}

// Valid reports whether t is one of the three known route types.
func (t RouteType) Valid() bool {
	_, ok := baseRates[t]
	return ok
}

// BaseRate returns the fixed base transmission rate for the route type.
func (t RouteType) BaseRate() float64 {
	return baseRates[t]
}

// Point is a geographic lat/lng pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Route is a directed transmission channel between two countries.
// Countries are referenced by id; the route never owns them.
type Route struct {
	Source    string
	Target    string
	Type      RouteType
	Active    bool
	Intensity float64

	// Geographic endpoints used for infection-radius intersection tests.
	SourcePoint Point
	TargetPoint Point
}

// NewRoute creates an inactive route with default intensity.
func NewRoute(source, target string, routeType RouteType) *Route {
	return &Route{
		Source:    source,
		Target:    target,
		Type:      routeType,
		Intensity: 1.0,
	}
}

// SetPoints sets the geographic endpoints of the route.
func (r *Route) SetPoints(sourcePoint, targetPoint Point) {
	r.SourcePoint = sourcePoint
	r.TargetPoint = targetPoint
}

// Activate marks the route as open for transmission.
func (r *Route) Activate() {
	r.Active = true
}

// Deactivate closes the route.
func (r *Route) Deactivate() {
	r.Active = false
}

// CalculateTransmission returns the number of new infections carried by this
// route for one step. Inactive routes transmit nothing. The flow scales with
// the source's infected count and the target's susceptible pool, damped by the
// per-type resistance factor, and is floored at zero.
func (r *Route) CalculateTransmission(sourceInfected, targetSusceptible float64, resistanceFactors map[RouteType]float64) float64 {
	if !r.Active {
		return 0.0
	}

	resistance, ok := resistanceFactors[r.Type]
	if !ok {
		resistance = 1.0
	}

	flow := r.Type.BaseRate() * r.Intensity * sourceInfected * targetSusceptible * (1 - resistance) / 1_000_000

	if flow < 0 {
		return 0.0
	}
	return flow
}
