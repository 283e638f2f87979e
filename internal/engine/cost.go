package engine

import (
	"fmt"
	"strings"

	"eftb/internal/graph"
)

// Optimize selects what a path search minimises.
type Optimize int

const (
	OptimizeFuel Optimize = iota
	OptimizeDistance
	OptimizeHops
)

func (o Optimize) String() string {
	switch o {
	case OptimizeFuel:
		return "fuel"
	case OptimizeDistance:
		return "distance"
	case OptimizeHops:
		return "hops"
	}
	return fmt.Sprintf("Optimize(%d)", int(o))
}

// ParseOptimize parses "fuel", "distance" or "hops".
func ParseOptimize(s string) (Optimize, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fuel":
		return OptimizeFuel, nil
	case "distance":
		return OptimizeDistance, nil
	case "hops":
		return OptimizeHops, nil
	}
	return 0, fmt.Errorf("%w: optimize %q (want fuel, distance or hops)", ErrInvalidParameter, s)
}

// Fuel-mode cost of gate links, in light-year equivalents. Warping to a
// fixed gate burns a little fuel; player gates charge a toll on top.
const (
	FixedGateFuelCost  = 1.0
	PlayerGateFuelCost = 2.0
)

// LinkCost returns the cost of traversing l, in light-years or light-year
// equivalents.
func LinkCost(l graph.Link, o Optimize) float64 {
	switch o {
	case OptimizeDistance:
		return l.Distance.LightYears()
	case OptimizeFuel:
		switch l.Kind {
		case graph.FixedGate:
			return FixedGateFuelCost
		case graph.PlayerGate:
			return PlayerGateFuelCost
		}
		return l.Distance.LightYears()
	}
	return 1
}

// Heuristic estimates the remaining cost from a system to the goal.
//
// Distance mode uses the straight-line distance, which never overestimates
// because link distances are Euclidean. Fuel and hops return 0: a gate can
// cover any distance for a constant cost, so any distance-based estimate may
// overestimate and lose the optimal route.
func Heuristic(o Optimize, from, goal *graph.SolarSystem) float64 {
	if o == OptimizeDistance {
		return graph.Distance(from, goal).LightYears()
	}
	return 0
}
