// Package translator converts external market metrics into simulation
// parameters. The mapping is a pure unit conversion; fetching the metrics is
// the Client's job.
package translator

import (
	"math"

	"github.com/solflu/outbreak/pkg/simulation"
)

// MarketMetrics is a point-in-time view of the tracked market.
type MarketMetrics struct {
	Price             float64 `json:"price" validate:"gte=0"`
	Volume24h         float64 `json:"volume_24h" validate:"gte=0"`
	PriceChange24h    float64 `json:"price_change_24h"`
	MarketCap         float64 `json:"market_cap" validate:"gte=0"`
	PreviousMarketCap float64 `json:"previous_market_cap"`
	Volatility        float64 `json:"volatility" validate:"gte=0"`
	Timestamp         float64 `json:"timestamp"`
}

// Translation constants. Recovery is constant in the current model; market
// movement expresses itself through spread speed and infectivity instead.
// referenceMarketCap is the cap at which a stable market maps to the neutral
// parameter set.
const (
	baseInfectionRate  = 1.0
	minInfectionRate   = 0.1
	recoveryRate       = 0.1
	minSpeed           = 0.5
	maxSpeed           = 2.0
	minIntensity       = 0.5
	maxIntensity       = 2.0
	referenceMarketCap = 10_000_000_000
	minCapFactor       = 0.1
	maxCapFactor       = 0.4
	neutralCapFactor   = 0.3
	momentumWeight     = 0.4
	maxRawInfection    = 0.8
)

// Translate converts market metrics into a simulation parameter set:
//
//   - absolute market cap sets the base infectivity (bigger market, more
//     fuel), clamped to [0.1,0.4] before normalizing around the reference cap
//   - price momentum in either direction adds infectivity, the combined raw
//     rate clamped to [0.1,0.8]
//   - market-cap growth accelerates infection, decline starves it
//   - volatility drives the speed multiplier
//   - traded volume drives transmission intensity
//   - recovery stays constant
func Translate(m MarketMetrics) simulation.Parameters {
	capChange := 0.0
	if m.PreviousMarketCap > 0 {
		capChange = (m.MarketCap - m.PreviousMarketCap) / m.PreviousMarketCap
	}

	capFactor := clamp(m.MarketCap/referenceMarketCap*neutralCapFactor, minCapFactor, maxCapFactor)
	momentum := math.Abs(m.PriceChange24h) / 100.0
	rawRate := clamp(capFactor+momentum*momentumWeight, minCapFactor, maxRawInfection)

	// rawRate/neutralCapFactor is 1.0 for a quiet market at the reference cap,
	// so the neutral case yields the neutral parameter set.
	infectionRate := baseInfectionRate * (1 + capChange) * rawRate / neutralCapFactor
	if infectionRate < minInfectionRate {
		infectionRate = minInfectionRate
	}

	// Volatility is a percentage; normalize into the speed window.
	speed := clamp(0.5+m.Volatility/100.0*1.5, minSpeed, maxSpeed)

	intensity := clamp(m.Volume24h/2_000_000_000, minIntensity, maxIntensity)

	return simulation.Parameters{
		InfectionRate:         infectionRate,
		RecoveryRate:          recoveryRate,
		SpeedMultiplier:       speed,
		TransmissionIntensity: intensity,
	}
}

// FallbackParameters is the neutral parameter set used when the market feed
// is unreachable.
func FallbackParameters() simulation.Parameters {
	return simulation.Parameters{
		InfectionRate:         1.0,
		RecoveryRate:          0.1,
		SpeedMultiplier:       1.0,
		TransmissionIntensity: 1.0,
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
