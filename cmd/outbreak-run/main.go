// outbreak-run executes a scenario headlessly for a fixed number of steps
// and prints global statistics, useful for calibrating scenarios without
// standing up the full server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/solflu/outbreak/pkg/scenario"
	"github.com/solflu/outbreak/pkg/simulation"
)

func main() {
	scenarioPath := flag.String("scenario", "", "Path to scenario YAML file (required)")
	steps := flag.Int("steps", 100, "Number of steps to simulate")
	infectionRate := flag.Float64("infection-rate", 1.0, "Infection rate modifier")
	recoveryRate := flag.Float64("recovery-rate", 0.1, "Recovery rate")
	speed := flag.Float64("speed", 1.0, "Speed multiplier")
	intensity := flag.Float64("intensity", 1.0, "Transmission intensity")
	every := flag.Int("print-every", 10, "Print stats every N steps (0 prints only the final state)")
	asJSON := flag.Bool("json", false, "Print the final snapshot as JSON")
	flag.Parse()

	if *scenarioPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	world, err := scenario.Load(*scenarioPath)
	if err != nil {
		log.Fatalf("Failed to load scenario: %v", err)
	}

	model := simulation.New()
	if err := world.Apply(model); err != nil {
		log.Fatalf("Failed to apply scenario: %v", err)
	}

	params := simulation.Parameters{
		InfectionRate:         *infectionRate,
		RecoveryRate:          *recoveryRate,
		SpeedMultiplier:       *speed,
		TransmissionIntensity: *intensity,
	}

	fmt.Printf("Scenario %q: %d countries, %d routes, %d steps\n",
		world.Name, len(world.Countries), len(world.Routes), *steps)

	for i := 1; i <= *steps; i++ {
		if err := model.Step(params); err != nil {
			log.Fatalf("Step %d failed: %v", i, err)
		}
		if *every > 0 && i%*every == 0 {
			printStats(i, model)
		}
	}

	state := model.State()
	if *asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(state); err != nil {
			log.Fatalf("Failed to encode snapshot: %v", err)
		}
		return
	}

	fmt.Println("\nFinal state:")
	printStats(*steps, model)
	fmt.Printf("  strain=%d mutations=%d active_routes=%d\n",
		state.MutationState.Strain,
		state.MutationState.MutationCount,
		len(state.ActiveRoutes))
	for id, country := range state.Countries {
		fmt.Printf("  %-6s S=%12.0f I=%12.0f R=%12.0f\n",
			id, country.Susceptible, country.Infected, country.Recovered)
	}
}

func printStats(step int, model *simulation.Model) {
	stats := model.GlobalStats()
	fmt.Printf("step %5d: infected=%12.0f recovered=%12.0f rate=%.4f\n",
		step, stats.TotalInfected, stats.TotalRecovered, stats.InfectionRate)
}
