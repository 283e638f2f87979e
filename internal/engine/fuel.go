package engine

import (
	"fmt"
	"math"

	"eftb/internal/units"
)

// ResolveEfficiency picks the fuel efficiency for a query: a named fuel grade
// wins over an explicit value.
func ResolveEfficiency(efficiency float64, fuelType string) (float64, error) {
	if fuelType != "" {
		eff, err := units.FuelEfficiency(fuelType)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
		}
		return eff, nil
	}
	if !positive(efficiency) {
		return 0, fmt.Errorf("%w: efficiency %v", ErrInvalidParameter, efficiency)
	}
	return efficiency, nil
}

// FuelRequired validates its inputs and returns the fuel units a ship of the
// given mass (kg) burns over dist.
func FuelRequired(dist units.Meters, mass, efficiency float64) (float64, error) {
	if math.IsNaN(float64(dist)) || dist < 0 || math.IsInf(float64(dist), 0) {
		return 0, fmt.Errorf("%w: distance %v", ErrInvalidParameter, float64(dist))
	}
	if !positive(mass) {
		return 0, fmt.Errorf("%w: mass %v", ErrInvalidParameter, mass)
	}
	if !positive(efficiency) {
		return 0, fmt.Errorf("%w: efficiency %v", ErrInvalidParameter, efficiency)
	}
	return units.Fuel(dist, mass, efficiency), nil
}

// JumpRange validates its inputs and returns how far fuel units carry a ship
// of the given mass (kg).
func JumpRange(mass, fuel, efficiency float64) (units.Meters, error) {
	if !positive(mass) {
		return 0, fmt.Errorf("%w: mass %v", ErrInvalidParameter, mass)
	}
	if math.IsNaN(fuel) || fuel < 0 || math.IsInf(fuel, 0) {
		return 0, fmt.Errorf("%w: fuel %v", ErrInvalidParameter, fuel)
	}
	if !positive(efficiency) {
		return 0, fmt.Errorf("%w: efficiency %v", ErrInvalidParameter, efficiency)
	}
	return units.JumpRange(mass, fuel, efficiency), nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
