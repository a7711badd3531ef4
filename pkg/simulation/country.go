package simulation

import (
	"github.com/solflu/outbreak/pkg/transmission"
)

// Country holds one country's SIR compartments and geography. The population
// is fixed at creation; susceptible/infected/recovered always sum to it
// within the conservation tolerance.
type Country struct {
	Population      float64
	Susceptible     float64
	Infected        float64
	Recovered       float64
	Resistance      map[transmission.RouteType]float64
	Location        transmission.Point
	InfectionRadius float64
}

// CountrySeed is the input for registering a country. Population is required;
// everything else has documented defaults.
type CountrySeed struct {
	Population float64
	Infected   float64
	Recovered  float64
	Resistance map[transmission.RouteType]float64
	Location   *transmission.Point
}

// DefaultResistance returns the per-route-type resistance assigned to
// countries created without one.
func DefaultResistance() map[transmission.RouteType]float64 {
	return map[transmission.RouteType]float64{
		transmission.RouteAir:  0.5,
		transmission.RouteSea:  0.3,
		transmission.RouteLand: 0.4,
	}
}

// CountrySnapshot is the read-only view of a country in a state snapshot.
type CountrySnapshot struct {
	Population      float64                            `json:"population"`
	Susceptible     float64                            `json:"susceptible"`
	Infected        float64                            `json:"infected"`
	Recovered       float64                            `json:"recovered"`
	Resistance      map[transmission.RouteType]float64 `json:"resistance"`
	Location        transmission.Point                 `json:"location"`
	InfectionRadius float64                            `json:"infection_radius"`
}

func (c *Country) snapshot() CountrySnapshot {
	resistance := make(map[transmission.RouteType]float64, len(c.Resistance))
	for routeType, value := range c.Resistance {
		resistance[routeType] = value
	}
	return CountrySnapshot{
		Population:      c.Population,
		Susceptible:     c.Susceptible,
		Infected:        c.Infected,
		Recovered:       c.Recovered,
		Resistance:      resistance,
		Location:        c.Location,
		InfectionRadius: c.InfectionRadius,
	}
}
