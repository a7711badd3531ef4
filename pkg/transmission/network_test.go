package transmission

import (
	"io"
	"testing"

	"github.com/solflu/outbreak/pkg/logging"
)

func testLogger() logging.Logger {
	return logging.NewJSONLogger(io.Discard, logging.ErrorLevel)
}

func TestAddRouteUpdatesBothIndexes(t *testing.T) {
	n := NewNetwork(testLogger())

	n.AddRoute("US", "UK", RouteAir, nil, nil)
	n.AddRoute("US", "FR", RouteSea, nil, nil)
	n.AddRoute("UK", "FR", RouteLand, nil, nil)

	if len(n.Routes()) != 3 {
		t.Fatalf("Expected 3 routes, got %d", len(n.Routes()))
	}

	outbound := n.Outbound("US")
	if len(outbound) != 2 {
		t.Fatalf("Expected 2 outbound routes from US, got %d", len(outbound))
	}
	// Insertion order is preserved
	if outbound[0].Target != "UK" || outbound[1].Target != "FR" {
		t.Errorf("Outbound routes out of order: %s, %s", outbound[0].Target, outbound[1].Target)
	}
}

func TestOutboundUnknownCountry(t *testing.T) {
	n := NewNetwork(testLogger())
	if routes := n.Outbound("nowhere"); len(routes) != 0 {
		t.Errorf("Expected no routes for unknown country, got %d", len(routes))
	}
}

func TestActivateRouteFirstMatchOnly(t *testing.T) {
	n := NewNetwork(testLogger())
	first := n.AddRoute("US", "UK", RouteAir, nil, nil)
	second := n.AddRoute("US", "UK", RouteSea, nil, nil)

	if !n.ActivateRoute("US", "UK") {
		t.Fatal("Expected activation to succeed")
	}
	if !first.Active {
		t.Error("First matching route should be active")
	}
	if second.Active {
		t.Error("Duplicate route should not be toggled")
	}

	if n.ActivateRoute("US", "JP") {
		t.Error("Activation of a missing route should report false")
	}
}

func TestDeactivateRoute(t *testing.T) {
	n := NewNetwork(testLogger())
	route := n.AddRoute("US", "UK", RouteAir, nil, nil)
	route.Activate()

	if !n.DeactivateRoute("US", "UK") {
		t.Fatal("Expected deactivation to succeed")
	}
	if route.Active {
		t.Error("Route should be inactive after deactivation")
	}
}

func TestRoutePoints(t *testing.T) {
	n := NewNetwork(testLogger())
	sp := Point{Lat: 38.9, Lng: -77.0}
	tp := Point{Lat: 51.5, Lng: -0.1}
	n.AddRoute("US", "UK", RouteAir, &sp, &tp)

	gotSP, gotTP, ok := n.RoutePoints("US", "UK")
	if !ok {
		t.Fatal("Expected route points to be found")
	}
	if gotSP != sp || gotTP != tp {
		t.Errorf("Unexpected points: %+v, %+v", gotSP, gotTP)
	}

	if _, _, ok := n.RoutePoints("US", "JP"); ok {
		t.Error("Expected no points for missing route")
	}
}

func TestUpdateIntensities(t *testing.T) {
	n := NewNetwork(testLogger())
	a := n.AddRoute("US", "UK", RouteAir, nil, nil)
	b := n.AddRoute("UK", "FR", RouteLand, nil, nil)

	n.UpdateIntensities(1.7)
	if a.Intensity != 1.7 || b.Intensity != 1.7 {
		t.Errorf("Expected network-wide intensity 1.7, got %f and %f", a.Intensity, b.Intensity)
	}
}

func TestCalculateTransmissionsSkipsMissingEndpoints(t *testing.T) {
	n := NewNetwork(testLogger())
	route := n.AddRoute("US", "UK", RouteAir, nil, nil)
	route.Activate()

	countries := map[string]SIRCounts{
		"US": {Susceptible: 990000, Infected: 10000},
		// UK missing from the snapshot
	}
	inflow := n.CalculateTransmissions(countries, map[RouteType]float64{RouteAir: 0.5})
	if len(inflow) != 0 {
		t.Errorf("Expected no inflow with missing target, got %v", inflow)
	}
}

// A country that is only ever a source must never receive inflow.
func TestSourceOnlyCountryReceivesNoInflow(t *testing.T) {
	n := NewNetwork(testLogger())
	for _, target := range []string{"UK", "FR", "JP"} {
		route := n.AddRoute("US", target, RouteAir, nil, nil)
		route.Activate()
	}

	countries := map[string]SIRCounts{
		"US": {Susceptible: 500000, Infected: 500000},
		"UK": {Susceptible: 800000, Infected: 100},
		"FR": {Susceptible: 600000, Infected: 0},
		"JP": {Susceptible: 900000, Infected: 0},
	}

	inflow := n.CalculateTransmissions(countries, map[RouteType]float64{RouteAir: 0.5})
	if inflow["US"] != 0 {
		t.Errorf("Source-only country must have zero inflow, got %f", inflow["US"])
	}
	for _, target := range []string{"UK", "FR", "JP"} {
		if inflow[target] <= 0 {
			t.Errorf("Expected positive inflow for %s, got %f", target, inflow[target])
		}
	}
}

func TestCalculateTransmissionsSumsByTarget(t *testing.T) {
	n := NewNetwork(testLogger())
	r1 := n.AddRoute("US", "UK", RouteAir, nil, nil)
	r2 := n.AddRoute("FR", "UK", RouteLand, nil, nil)
	r1.Activate()
	r2.Activate()

	countries := map[string]SIRCounts{
		"US": {Susceptible: 0, Infected: 10000},
		"FR": {Susceptible: 0, Infected: 5000},
		"UK": {Susceptible: 700000, Infected: 0},
	}
	factors := map[RouteType]float64{RouteAir: 0.5, RouteLand: 0.5}

	inflow := n.CalculateTransmissions(countries, factors)

	expected := r1.CalculateTransmission(10000, 700000, factors) +
		r2.CalculateTransmission(5000, 700000, factors)
	if inflow["UK"] != expected {
		t.Errorf("Expected combined inflow %f, got %f", expected, inflow["UK"])
	}
}
