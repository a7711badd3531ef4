package statecache

import (
	"math"

	"github.com/solflu/outbreak/pkg/simulation"
	"github.com/solflu/outbreak/pkg/transmission"
)

// significantRateDelta is the global infection-rate change above which a
// diff is always worth broadcasting.
const significantRateDelta = 0.1

// FieldChange records an old/new pair for a numeric field.
type FieldChange struct {
	Old float64 `json:"old"`
	New float64 `json:"new"`
}

// CountryStatus classifies a country's appearance in a diff.
type CountryStatus string

const (
	CountryNew     CountryStatus = "new"
	CountryChanged CountryStatus = "changed"
	CountryRemoved CountryStatus = "removed"
)

// CountryDiff describes how one country changed between snapshots.
type CountryDiff struct {
	Status  CountryStatus               `json:"status"`
	Changes map[string]FieldChange      `json:"changes,omitempty"`
	Data    *simulation.CountrySnapshot `json:"data,omitempty"`
}

// StrainChange records a strain transition.
type StrainChange struct {
	Old int `json:"old"`
	New int `json:"new"`
}

// MutationDiff describes mutation-state changes between snapshots.
type MutationDiff struct {
	Strain     *StrainChange                          `json:"strain,omitempty"`
	Resistance map[transmission.RouteType]FieldChange `json:"resistance,omitempty"`
}

// Diff is the structural difference between two snapshots.
type Diff struct {
	Countries   map[string]CountryDiff `json:"countries,omitempty"`
	GlobalStats map[string]FieldChange `json:"global_stats,omitempty"`
	Mutation    MutationDiff           `json:"mutation_state,omitempty"`
}

// Empty reports whether the diff carries no changes.
func (d *Diff) Empty() bool {
	return d == nil ||
		(len(d.Countries) == 0 && len(d.GlobalStats) == 0 &&
			d.Mutation.Strain == nil && len(d.Mutation.Resistance) == 0)
}

// Significant reports whether the diff should trigger an immediate
// broadcast: a strain change, a large global infection-rate move, or a
// country appearing or disappearing.
func (d *Diff) Significant() bool {
	if d == nil {
		return false
	}
	if d.Mutation.Strain != nil {
		return true
	}
	if change, ok := d.GlobalStats["infection_rate"]; ok {
		if math.Abs(change.New-change.Old) > significantRateDelta {
			return true
		}
	}
	for _, country := range d.Countries {
		if country.Status == CountryNew || country.Status == CountryRemoved {
			return true
		}
	}
	return false
}

func computeDiff(prev, next *simulation.Snapshot) *Diff {
	diff := &Diff{
		Countries:   make(map[string]CountryDiff),
		GlobalStats: make(map[string]FieldChange),
	}

	diffGlobalStats(diff, prev.GlobalStats, next.GlobalStats)
	diffCountries(diff, prev.Countries, next.Countries)
	diffMutation(diff, prev.MutationState.Strain, next.MutationState.Strain,
		prev.MutationState.ResistanceFactors, next.MutationState.ResistanceFactors)

	if diff.Empty() {
		return &Diff{}
	}
	return diff
}

func diffGlobalStats(diff *Diff, prev, next simulation.GlobalStats) {
	fields := map[string][2]float64{
		"total_susceptible": {prev.TotalSusceptible, next.TotalSusceptible},
		"total_infected":    {prev.TotalInfected, next.TotalInfected},
		"total_recovered":   {prev.TotalRecovered, next.TotalRecovered},
		"total_population":  {prev.TotalPopulation, next.TotalPopulation},
		"infection_rate":    {prev.InfectionRate, next.InfectionRate},
	}
	for name, pair := range fields {
		if pair[0] != pair[1] {
			diff.GlobalStats[name] = FieldChange{Old: pair[0], New: pair[1]}
		}
	}
}

func diffCountries(diff *Diff, prev, next map[string]simulation.CountrySnapshot) {
	for id, newData := range next {
		oldData, existed := prev[id]
		if !existed {
			data := newData
			diff.Countries[id] = CountryDiff{Status: CountryNew, Data: &data}
			continue
		}

		changes := make(map[string]FieldChange)
		compartments := map[string][2]float64{
			"susceptible": {oldData.Susceptible, newData.Susceptible},
			"infected":    {oldData.Infected, newData.Infected},
			"recovered":   {oldData.Recovered, newData.Recovered},
		}
		for name, pair := range compartments {
			if pair[0] != pair[1] {
				changes[name] = FieldChange{Old: pair[0], New: pair[1]}
			}
		}
		if len(changes) > 0 {
			diff.Countries[id] = CountryDiff{Status: CountryChanged, Changes: changes}
		}
	}

	for id := range prev {
		if _, stillThere := next[id]; !stillThere {
			diff.Countries[id] = CountryDiff{Status: CountryRemoved}
		}
	}
}

func diffMutation(diff *Diff, oldStrain, newStrain int, oldResistance, newResistance map[transmission.RouteType]float64) {
	if oldStrain != newStrain {
		diff.Mutation.Strain = &StrainChange{Old: oldStrain, New: newStrain}
	}

	for routeType, newValue := range newResistance {
		if oldValue, ok := oldResistance[routeType]; !ok || oldValue != newValue {
			if diff.Mutation.Resistance == nil {
				diff.Mutation.Resistance = make(map[transmission.RouteType]FieldChange)
			}
			diff.Mutation.Resistance[routeType] = FieldChange{Old: oldResistance[routeType], New: newValue}
		}
	}
}
