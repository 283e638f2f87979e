package units

import (
	"fmt"
	"sort"
	"strings"
)

// FuelGrade is a named fuel type and its efficiency factor.
type FuelGrade struct {
	Name       string  `json:"name"`
	Efficiency float64 `json:"efficiency"`
}

var fuelGrades = map[string]float64{
	"D1":     0.10,
	"D2":     0.15,
	"EU-40":  0.40,
	"SOF-40": 0.40,
	"SOF-80": 0.80,
	"EU-90":  0.90,
}

// FuelGrades returns all known fuel grades ordered by efficiency, then name.
func FuelGrades() []FuelGrade {
	out := make([]FuelGrade, 0, len(fuelGrades))
	for name, eff := range fuelGrades {
		out = append(out, FuelGrade{Name: name, Efficiency: eff})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Efficiency != out[j].Efficiency {
			return out[i].Efficiency < out[j].Efficiency
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// FuelEfficiency looks up a fuel grade by name (case-insensitive).
func FuelEfficiency(name string) (float64, error) {
	eff, ok := fuelGrades[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown fuel type %q", name)
	}
	return eff, nil
}

// FuelCompatible reports whether two fuel grades can share a tank.
// Basic D-grade fuels only mix with each other.
func FuelCompatible(a, b string) bool {
	return isBasicFuel(a) == isBasicFuel(b)
}

func isBasicFuel(name string) bool {
	n := strings.ToUpper(strings.TrimSpace(name))
	return n == "D1" || n == "D2"
}
