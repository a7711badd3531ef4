package simulation

import (
	"io"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solflu/outbreak/pkg/logging"
	"github.com/solflu/outbreak/pkg/transmission"
)

// Full two-country outbreak: an air route carries infection from the US to
// an initially clean UK within ten steps, without breaking conservation.
func TestTransatlanticOutbreakScenario(t *testing.T) {
	m := New(
		WithLogger(logging.NewJSONLogger(io.Discard, logging.ErrorLevel)),
		WithRand(rand.New(rand.NewSource(42))),
	)

	require.NoError(t, m.AddCountry("US", CountrySeed{Population: 1_000_000, Infected: 1_000}))
	require.NoError(t, m.AddCountry("UK", CountrySeed{Population: 800_000}))
	require.True(t, m.AddRoute("US", "UK", transmission.RouteAir))

	params := Parameters{
		InfectionRate:   1.0,
		RecoveryRate:    0.1,
		SpeedMultiplier: 1.0,
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, m.Step(params), "step %d", i)
	}

	state := m.State()
	uk := state.Countries["UK"]
	us := state.Countries["US"]

	assert.Greater(t, uk.Infected, 0.0, "infection should have crossed the route")
	for id, c := range state.Countries {
		drift := math.Abs(c.Susceptible + c.Infected + c.Recovered - c.Population)
		assert.LessOrEqual(t, drift, 1.0, "conservation for %s", id)
	}
	assert.Greater(t, us.Recovered, 0.0)
	assert.Contains(t, state.ActiveRoutes, "US-UK")
}
