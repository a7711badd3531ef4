package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/solflu/outbreak/pkg/transmission"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxCountryIDLength = 16
	MaxPopulation      = 2_000_000_000.0
	MaxSpeedMultiplier = 10.0
	MaxIntensity       = 10.0

	// Country identifiers follow ISO-style codes: letters, digits, hyphen
	countryIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)
)

func init() {
	validate = validator.New()
}

// CountryRequest represents a request to register a country in a simulation
type CountryRequest struct {
	ID         string             `json:"id" validate:"required,min=1,max=16"`
	Population float64            `json:"population" validate:"required,gt=0"`
	Infected   float64            `json:"infected" validate:"omitempty,gte=0"`
	Recovered  float64            `json:"recovered" validate:"omitempty,gte=0"`
	Lat        *float64           `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng        *float64           `json:"lng" validate:"omitempty,gte=-180,lte=180"`
	Resistance map[string]float64 `json:"resistance" validate:"omitempty,max=3"`
}

// RouteRequest represents a request to connect two countries
type RouteRequest struct {
	Source string `json:"source" validate:"required,min=1,max=16"`
	Target string `json:"target" validate:"required,min=1,max=16"`
	Type   string `json:"type" validate:"required,oneof=air sea land"`
}

// ParametersRequest represents a manual override of simulation parameters
type ParametersRequest struct {
	InfectionRate         float64 `json:"infection_rate" validate:"omitempty,gte=0"`
	RecoveryRate          float64 `json:"recovery_rate" validate:"omitempty,gte=0,lte=1"`
	SpeedMultiplier       float64 `json:"speed_multiplier" validate:"omitempty,gt=0"`
	TransmissionIntensity float64 `json:"transmission_intensity" validate:"omitempty,gte=0"`
}

// ValidateCountryRequest validates a country registration request
func ValidateCountryRequest(req *CountryRequest) error {
	if req == nil {
		return errors.New("country request cannot be nil")
	}

	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	if !countryIDPattern.MatchString(req.ID) {
		return fmt.Errorf("ID: '%s' contains invalid characters (must start with a letter, then letters, digits or hyphen)", req.ID)
	}
	if req.Population > MaxPopulation {
		return fmt.Errorf("Population: must not exceed %.0f", MaxPopulation)
	}
	if req.Infected+req.Recovered > req.Population {
		return fmt.Errorf("Infected: infected plus recovered (%.0f) exceeds population (%.0f)",
			req.Infected+req.Recovered, req.Population)
	}
	// Coordinates come as a pair or not at all
	if (req.Lat == nil) != (req.Lng == nil) {
		return errors.New("Lat: lat and lng must be provided together")
	}
	for routeType, value := range req.Resistance {
		if !transmission.RouteType(routeType).Valid() {
			return fmt.Errorf("Resistance: '%s' is not a known route type", routeType)
		}
		if value < 0 || value > 1 {
			return fmt.Errorf("Resistance: %s must be between 0 and 1, got %f", routeType, value)
		}
	}

	return nil
}

// ValidateRouteRequest validates a route creation request
func ValidateRouteRequest(req *RouteRequest) error {
	if req == nil {
		return errors.New("route request cannot be nil")
	}

	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	if req.Source == req.Target {
		return fmt.Errorf("Target: route cannot connect '%s' to itself", req.Source)
	}
	if !transmission.RouteType(req.Type).Valid() {
		return fmt.Errorf("Type: '%s' is not a known route type", req.Type)
	}

	return nil
}

// ValidateParametersRequest validates a parameter override request
func ValidateParametersRequest(req *ParametersRequest) error {
	if req == nil {
		return errors.New("parameters request cannot be nil")
	}

	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	if req.SpeedMultiplier > MaxSpeedMultiplier {
		return fmt.Errorf("SpeedMultiplier: must not exceed %.0f", MaxSpeedMultiplier)
	}
	if req.TransmissionIntensity > MaxIntensity {
		return fmt.Errorf("TransmissionIntensity: must not exceed %.0f", MaxIntensity)
	}

	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
