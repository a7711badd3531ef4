package simulation

// GlobalStats is a derived summary across all countries. It has no stored
// identity; it is recomputed on demand from country data.
type GlobalStats struct {
	TotalSusceptible float64 `json:"total_susceptible"`
	TotalInfected    float64 `json:"total_infected"`
	TotalRecovered   float64 `json:"total_recovered"`
	TotalPopulation  float64 `json:"total_population"`
	InfectionRate    float64 `json:"infection_rate"`
	Timestamp        float64 `json:"timestamp"`
}

// computeGlobalStats folds the per-country compartments into totals.
// The infection rate is zero when there is no population.
func computeGlobalStats(countries map[string]*Country, elapsed float64) GlobalStats {
	stats := GlobalStats{Timestamp: elapsed}

	for _, country := range countries {
		stats.TotalSusceptible += country.Susceptible
		stats.TotalInfected += country.Infected
		stats.TotalRecovered += country.Recovered
		stats.TotalPopulation += country.Population
	}

	if stats.TotalPopulation > 0 {
		stats.InfectionRate = stats.TotalInfected / stats.TotalPopulation
	}
	return stats
}
