// Package units relates distance, fuel, ship mass and fuel efficiency.
//
// Distances are carried as Meters so that light-year conversions are always
// explicit at the call site. Mass and efficiency are not validated here:
// callers pass physically sensible (positive) values.
package units

import "fmt"

// MetersPerLightYear is the length of one light-year in meters.
const MetersPerLightYear = 9.4607304725808e15

// fuelScale is the game's constant in fuel = ly * mass / (efficiency * fuelScale).
const fuelScale = 1e7

// Meters is a length in meters.
type Meters float64

// FromLightYears converts light-years to Meters.
func FromLightYears(ly float64) Meters {
	return Meters(ly * MetersPerLightYear)
}

// LightYears returns m in light-years.
func (m Meters) LightYears() float64 {
	return float64(m) / MetersPerLightYear
}

func (m Meters) String() string {
	return fmt.Sprintf("%.2f ly", m.LightYears())
}

// Fuel returns the fuel units needed to jump dist with a ship of the given
// mass (kg) burning fuel of the given efficiency.
func Fuel(dist Meters, mass, efficiency float64) float64 {
	return dist.LightYears() / (efficiency * fuelScale) * mass
}

// JumpRange returns how far a ship of the given mass (kg) can jump on fuel
// units of the given efficiency. It is the inverse of Fuel.
func JumpRange(mass, fuel, efficiency float64) Meters {
	return FromLightYears((fuel / mass) * efficiency * fuelScale)
}
