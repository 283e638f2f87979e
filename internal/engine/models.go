package engine

import (
	"time"

	"eftb/internal/graph"
	"eftb/internal/units"
)

// PathQuery describes a route request between two named systems.
type PathQuery struct {
	Start          string
	End            string
	MaxJump        units.Meters // longest jump link allowed
	Optimize       Optimize
	UsePlayerGates bool
	Timeout        time.Duration // 0 = no deadline
}

// PathStep is one link of a route.
type PathStep struct {
	Kind     graph.LinkKind
	Distance units.Meters
	From     graph.SystemID
	To       graph.SystemID
	FromName string
	ToName   string
}

// Path is the result of FindPath.
type Path struct {
	Steps    []PathStep
	Cost     float64 // in the units of the query's Optimize mode
	Expanded int     // search states expanded
}

// TotalDistance is the summed length of all steps.
func (p *Path) TotalDistance() units.Meters {
	var d units.Meters
	for _, s := range p.Steps {
		d += s.Distance
	}
	return d
}

// JumpDistance is the summed length of jump steps only (what burns fuel).
func (p *Path) JumpDistance() units.Meters {
	var d units.Meters
	for _, s := range p.Steps {
		if s.Kind == graph.Jump {
			d += s.Distance
		}
	}
	return d
}

// Jumps counts jump steps.
func (p *Path) Jumps() int {
	n := 0
	for _, s := range p.Steps {
		if s.Kind == graph.Jump {
			n++
		}
	}
	return n
}

// Exit is a jump out of the start system's region, reachable from the start
// through gates only.
type Exit struct {
	From     graph.SystemID
	To       graph.SystemID
	FromName string
	ToName   string
	ToRegion graph.RegionID
	Distance units.Meters
}
