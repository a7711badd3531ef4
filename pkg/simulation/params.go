package simulation

// Parameters is the per-step input supplied by the orchestration layer.
// Zero-valued fields fall back to the documented defaults, mirroring the
// optional-key contract of the external parameter feed.
type Parameters struct {
	// InfectionRate is a multiplier applied to the base infection rate.
	InfectionRate float64 `json:"infection_rate"`
	// RecoveryRate is the fraction of infected recovering per unit time.
	RecoveryRate float64 `json:"recovery_rate"`
	// SpeedMultiplier scales the integration time step.
	SpeedMultiplier float64 `json:"speed_multiplier"`
	// TransmissionIntensity is the network-wide route intensity scalar.
	TransmissionIntensity float64 `json:"transmission_intensity"`
}

// DefaultParameters returns the parameter set used when the feed is absent.
func DefaultParameters() Parameters {
	return Parameters{
		InfectionRate:         1.0,
		RecoveryRate:          0.1,
		SpeedMultiplier:       1.0,
		TransmissionIntensity: 1.0,
	}
}

// normalized fills unset (zero) fields with their defaults.
func (p Parameters) normalized() Parameters {
	defaults := DefaultParameters()
	if p.InfectionRate == 0 {
		p.InfectionRate = defaults.InfectionRate
	}
	if p.RecoveryRate == 0 {
		p.RecoveryRate = defaults.RecoveryRate
	}
	if p.SpeedMultiplier == 0 {
		p.SpeedMultiplier = defaults.SpeedMultiplier
	}
	if p.TransmissionIntensity == 0 {
		p.TransmissionIntensity = defaults.TransmissionIntensity
	}
	return p
}
