package health

import "time"

// TranslatorCheck reports whether the market translator service answers
// pings. An unreachable translator degrades rather than fails the server:
// sessions keep stepping on fallback parameters.
func TranslatorCheck(pingFunc func() error) CheckFunc {
	return func() Check {
		check := Check{
			Name: "translator",
		}

		if err := pingFunc(); err != nil {
			check.Status = StatusDegraded
			check.Message = "Unreachable, sessions running on fallback parameters: " + err.Error()
		} else {
			check.Status = StatusHealthy
			check.Message = "Connected"
		}

		return check
	}
}

// SimulationLoopCheck reports whether running sessions are stepping. A
// session whose last step is older than maxAge indicates a stalled loop.
func SimulationLoopCheck(lastSteps func() map[string]time.Time, maxAge time.Duration) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "simulation_loop",
			Details: make(map[string]any),
		}

		steps := lastSteps()
		check.Details["running_sessions"] = len(steps)

		if len(steps) == 0 {
			check.Status = StatusHealthy
			check.Message = "No sessions running"
			return check
		}

		stalled := 0
		for id, last := range steps {
			if time.Since(last) > maxAge {
				stalled++
				check.Details["stalled_"+id] = time.Since(last).String()
			}
		}

		if stalled == len(steps) {
			check.Status = StatusUnhealthy
			check.Message = "All session loops stalled"
		} else if stalled > 0 {
			check.Status = StatusDegraded
			check.Message = "Some session loops stalled"
		} else {
			check.Status = StatusHealthy
			check.Message = "All session loops stepping"
		}

		return check
	}
}

// BroadcastCheck reports whether the state publisher is accepting payloads.
func BroadcastCheck(publishProbe func() error) CheckFunc {
	return func() Check {
		check := Check{
			Name: "broadcast",
		}

		if err := publishProbe(); err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		} else {
			check.Status = StatusHealthy
			check.Message = "Publisher accepting payloads"
		}

		return check
	}
}

// MemoryCheck creates a health check for memory usage
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()

		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		usagePercent := float64(alloc) / float64(sys) * 100

		if usagePercent > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}

		return check
	}
}
