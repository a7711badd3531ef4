package transmission

import (
	"math"
	"testing"
)

func TestRouteTypeBaseRates(t *testing.T) {
	// Air is the fastest channel, sea the slowest
	if RouteAir.BaseRate() <= RouteLand.BaseRate() {
		t.Errorf("Air rate %f should exceed land rate %f", RouteAir.BaseRate(), RouteLand.BaseRate())
	}
	if RouteLand.BaseRate() <= RouteSea.BaseRate() {
		t.Errorf("Land rate %f should exceed sea rate %f", RouteLand.BaseRate(), RouteSea.BaseRate())
	}
}

func TestRouteTypeValid(t *testing.T) {
	for _, rt := range RouteTypes {
		if !rt.Valid() {
			t.Errorf("Expected %s to be valid", rt)
		}
	}
	if RouteType("teleport").Valid() {
		t.Error("Unknown route type should not be valid")
	}
}

func TestInactiveRouteTransmitsNothing(t *testing.T) {
	route := NewRoute("US", "UK", RouteAir)

	flow := route.CalculateTransmission(10000, 500000, map[RouteType]float64{RouteAir: 0.5})
	if flow != 0 {
		t.Errorf("Inactive route should transmit 0, got %f", flow)
	}
}

func TestCalculateTransmission(t *testing.T) {
	route := NewRoute("US", "UK", RouteAir)
	route.Activate()

	factors := map[RouteType]float64{RouteAir: 0.5}
	flow := route.CalculateTransmission(10000, 500000, factors)

	// 0.3 * 1.0 * 10000 * 500000 * 0.5 / 1e6
	expected := 0.3 * 10000 * 500000 * 0.5 / 1_000_000
	if math.Abs(flow-expected) > 1e-9 {
		t.Errorf("Expected flow %f, got %f", expected, flow)
	}
}

func TestTransmissionScalesWithIntensity(t *testing.T) {
	route := NewRoute("US", "UK", RouteSea)
	route.Activate()

	factors := map[RouteType]float64{RouteSea: 0.3}
	base := route.CalculateTransmission(1000, 1000, factors)

	route.Intensity = 2.0
	doubled := route.CalculateTransmission(1000, 1000, factors)

	if math.Abs(doubled-2*base) > 1e-9 {
		t.Errorf("Expected doubled intensity to double flow: %f vs %f", base, doubled)
	}
}

func TestTransmissionFlooredAtZero(t *testing.T) {
	route := NewRoute("US", "UK", RouteLand)
	route.Activate()

	// Resistance above 1 would make the flow negative without the floor
	flow := route.CalculateTransmission(1000, 1000, map[RouteType]float64{RouteLand: 1.5})
	if flow != 0 {
		t.Errorf("Expected zero flow, got %f", flow)
	}

	// A missing factor defaults to full resistance
	flow = route.CalculateTransmission(1000, 1000, map[RouteType]float64{})
	if flow != 0 {
		t.Errorf("Expected zero flow with missing resistance factor, got %f", flow)
	}
}
