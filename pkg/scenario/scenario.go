// Package scenario loads world definitions (countries and routes) from YAML
// files and applies them to a simulation.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/solflu/outbreak/pkg/simulation"
	"github.com/solflu/outbreak/pkg/transmission"
	"github.com/solflu/outbreak/pkg/validation"
)

// Country describes one country entry in a scenario file
type Country struct {
	ID         string             `yaml:"id"`
	Population float64            `yaml:"population"`
	Infected   float64            `yaml:"infected"`
	Recovered  float64            `yaml:"recovered"`
	Lat        *float64           `yaml:"lat"`
	Lng        *float64           `yaml:"lng"`
	Resistance map[string]float64 `yaml:"resistance"`
}

// Route describes one route entry in a scenario file
type Route struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
	Type   string `yaml:"type"`
}

// Scenario is a complete world definition
type Scenario struct {
	Name      string    `yaml:"name"`
	Countries []Country `yaml:"countries"`
	Routes    []Route   `yaml:"routes"`
}

// Load reads and validates a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates raw YAML scenario content
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	if len(s.Countries) == 0 {
		return nil, fmt.Errorf("scenario %q defines no countries", s.Name)
	}

	seen := make(map[string]struct{}, len(s.Countries))
	for i, country := range s.Countries {
		req := validation.CountryRequest{
			ID:         country.ID,
			Population: country.Population,
			Infected:   country.Infected,
			Recovered:  country.Recovered,
			Lat:        country.Lat,
			Lng:        country.Lng,
			Resistance: country.Resistance,
		}
		if err := validation.ValidateCountryRequest(&req); err != nil {
			return nil, fmt.Errorf("country %d: %w", i, err)
		}
		if _, dup := seen[country.ID]; dup {
			return nil, fmt.Errorf("country %d: duplicate id %q", i, country.ID)
		}
		seen[country.ID] = struct{}{}
	}

	for i, route := range s.Routes {
		req := validation.RouteRequest{
			Source: route.Source,
			Target: route.Target,
			Type:   route.Type,
		}
		if err := validation.ValidateRouteRequest(&req); err != nil {
			return nil, fmt.Errorf("route %d: %w", i, err)
		}
		if _, ok := seen[route.Source]; !ok {
			return nil, fmt.Errorf("route %d: unknown source %q", i, route.Source)
		}
		if _, ok := seen[route.Target]; !ok {
			return nil, fmt.Errorf("route %d: unknown target %q", i, route.Target)
		}
	}

	return &s, nil
}

// Apply populates a model with the scenario's countries and routes.
func (s *Scenario) Apply(model *simulation.Model) error {
	for _, country := range s.Countries {
		seed := simulation.CountrySeed{
			Population: country.Population,
			Infected:   country.Infected,
			Recovered:  country.Recovered,
		}
		if country.Lat != nil && country.Lng != nil {
			seed.Location = &transmission.Point{Lat: *country.Lat, Lng: *country.Lng}
		}
		if len(country.Resistance) > 0 {
			seed.Resistance = make(map[transmission.RouteType]float64, len(country.Resistance))
			for routeType, value := range country.Resistance {
				seed.Resistance[transmission.RouteType(routeType)] = value
			}
		}
		if err := model.AddCountry(country.ID, seed); err != nil {
			return fmt.Errorf("add country %s: %w", country.ID, err)
		}
	}

	for _, route := range s.Routes {
		if !model.AddRoute(route.Source, route.Target, transmission.RouteType(route.Type)) {
			return fmt.Errorf("add route %s-%s: rejected", route.Source, route.Target)
		}
	}

	return nil
}
