package simulation

import (
	"errors"
	"fmt"
)

// MissingFieldError reports a required field absent on country creation.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// StepError reports a failure while updating one country during a step.
// The step is aborted before any country state is committed.
type StepError struct {
	CountryID string
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step failed for country %s: %v", e.CountryID, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

var (
	// errNonFinite flags NaN or infinite compartment values, usually caused
	// by a corrupt parameter feed.
	errNonFinite = errors.New("non-finite compartment value")

	// errNoPopulation flags a country with a non-positive population inside
	// the step loop. AddCountry rejects these, so seeing one means the model
	// was mutated outside its API.
	errNoPopulation = errors.New("country has no population")
)
