package translator

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/solflu/outbreak/pkg/logging"
)

func TestTranslateStableMarket(t *testing.T) {
	params := Translate(MarketMetrics{
		MarketCap:         10_000_000_000,
		PreviousMarketCap: 10_000_000_000,
		Volume24h:         2_000_000_000,
		Volatility:        33.3333,
	})

	if params.InfectionRate != 1.0 {
		t.Errorf("Stable market cap should keep base infection rate, got %f", params.InfectionRate)
	}
	if params.RecoveryRate != 0.1 {
		t.Errorf("Recovery rate must be constant 0.1, got %f", params.RecoveryRate)
	}
	if params.TransmissionIntensity != 1.0 {
		t.Errorf("Expected intensity 1.0 at reference volume, got %f", params.TransmissionIntensity)
	}
}

func TestTranslateGrowingMarketSpreadsFaster(t *testing.T) {
	params := Translate(MarketMetrics{
		MarketCap:         12_000_000_000,
		PreviousMarketCap: 10_000_000_000,
	})
	if params.InfectionRate <= 1.0 {
		t.Errorf("Growing market cap should raise infection rate, got %f", params.InfectionRate)
	}
}

func TestTranslateSmallCapFloorsBaseInfectivity(t *testing.T) {
	// 1B cap is well under the reference; the cap factor clamps at 0.1,
	// a third of the neutral 0.3.
	params := Translate(MarketMetrics{
		MarketCap:         1_000_000_000,
		PreviousMarketCap: 1_000_000_000,
	})
	if got, want := params.InfectionRate, 0.1/0.3; math.Abs(got-want) > 1e-9 {
		t.Errorf("Small-cap infection rate = %f, want %f", got, want)
	}
}

func TestTranslatePriceMomentumBoostsInfection(t *testing.T) {
	stable := MarketMetrics{
		MarketCap:         10_000_000_000,
		PreviousMarketCap: 10_000_000_000,
	}

	up := stable
	up.PriceChange24h = 50
	down := stable
	down.PriceChange24h = -50

	upParams := Translate(up)
	downParams := Translate(down)

	// 0.5 momentum adds 0.2 on top of the neutral 0.3 factor.
	if got, want := upParams.InfectionRate, 0.5/0.3; math.Abs(got-want) > 1e-9 {
		t.Errorf("Momentum infection rate = %f, want %f", got, want)
	}
	if upParams.InfectionRate != downParams.InfectionRate {
		t.Errorf("Momentum must act on magnitude: up %f vs down %f",
			upParams.InfectionRate, downParams.InfectionRate)
	}
}

func TestTranslateRawInfectionCapsAtCeiling(t *testing.T) {
	params := Translate(MarketMetrics{
		MarketCap:         10_000_000_000,
		PreviousMarketCap: 10_000_000_000,
		PriceChange24h:    500,
	})
	if got, want := params.InfectionRate, 0.8/0.3; math.Abs(got-want) > 1e-9 {
		t.Errorf("Extreme momentum should clamp raw rate at 0.8, got rate %f want %f", got, want)
	}
}

func TestTranslateCrashFloorsInfectionRate(t *testing.T) {
	params := Translate(MarketMetrics{
		MarketCap:         1,
		PreviousMarketCap: 10_000_000_000,
	})
	if params.InfectionRate != 0.1 {
		t.Errorf("Crashing market must floor infection rate at 0.1, got %f", params.InfectionRate)
	}
}

func TestTranslateClampsSpeedAndIntensity(t *testing.T) {
	params := Translate(MarketMetrics{
		Volatility: 10_000,
		Volume24h:  1e15,
	})
	if params.SpeedMultiplier != 2.0 {
		t.Errorf("Speed must clamp at 2.0, got %f", params.SpeedMultiplier)
	}
	if params.TransmissionIntensity != 2.0 {
		t.Errorf("Intensity must clamp at 2.0, got %f", params.TransmissionIntensity)
	}

	params = Translate(MarketMetrics{})
	if params.SpeedMultiplier != 0.5 {
		t.Errorf("Speed must clamp at 0.5, got %f", params.SpeedMultiplier)
	}
	if params.TransmissionIntensity != 0.5 {
		t.Errorf("Intensity must clamp at 0.5, got %f", params.TransmissionIntensity)
	}
}

func TestTranslateZeroPreviousCapIsNeutral(t *testing.T) {
	params := Translate(MarketMetrics{MarketCap: 10_000_000_000})
	if params.InfectionRate != 1.0 {
		t.Errorf("Missing previous cap should read as no change, got %f", params.InfectionRate)
	}
}

func testLogger() logging.Logger {
	return logging.NewJSONLogger(io.Discard, logging.ErrorLevel)
}

func TestClientFetchesAndTranslates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/market/parameters" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"market_cap": 12000000000, "previous_market_cap": 10000000000, "volatility": 50, "volume_24h": 2000000000}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testLogger())
	params, source := client.Parameters(context.Background())

	if source != SourceLive {
		t.Errorf("Expected live parameters, got source %q", source)
	}
	if params.InfectionRate <= 1.0 {
		t.Errorf("Expected boosted infection rate from growing market, got %f", params.InfectionRate)
	}
	if params.RecoveryRate != 0.1 {
		t.Errorf("Expected constant recovery rate, got %f", params.RecoveryRate)
	}
}

func TestClientCachesWithinTTL(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"market_cap": 1, "previous_market_cap": 1}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testLogger())
	_, first := client.Parameters(context.Background())
	_, second := client.Parameters(context.Background())
	client.Parameters(context.Background())

	if calls != 1 {
		t.Errorf("Expected a single upstream call within the TTL, got %d", calls)
	}
	if first != SourceLive || second != SourceCached {
		t.Errorf("Expected live then cached, got %q then %q", first, second)
	}
}

func TestClientFallsBackOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testLogger())

	fallbacks := 0
	client.SetFallbackHook(func() { fallbacks++ })

	params, source := client.Parameters(context.Background())

	if source != SourceFallback {
		t.Errorf("Expected fallback source, got %q", source)
	}
	if params != FallbackParameters() {
		t.Errorf("Expected fallback parameters, got %+v", params)
	}
	if fallbacks != 1 {
		t.Errorf("Expected fallback hook to fire once, got %d", fallbacks)
	}
}

func TestClientPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	client := NewClient(srv.URL, testLogger())
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping against healthy server failed: %v", err)
	}

	srv.Close()
	if err := client.Ping(context.Background()); err == nil {
		t.Error("Ping against closed server should fail")
	}
}
