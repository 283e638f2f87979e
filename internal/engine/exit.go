package engine

import (
	"fmt"
	"math"
	"sort"

	"eftb/internal/graph"
	"eftb/internal/units"
)

// FindExits lists every jump out of the start system's region that can be
// reached from the start using gates only.
//
// Phase 1 walks the gate network (fixed gates, plus player gates when
// usePlayerGates). Phase 2 scans the jump links of every system in it and
// keeps those within maxJump whose target lies in another region. Several
// origins jumping to the same destination are all reported.
func FindExits(u *graph.Universe, start string, maxJump units.Meters, usePlayerGates bool) ([]Exit, error) {
	if math.IsNaN(float64(maxJump)) || maxJump < 0 {
		return nil, fmt.Errorf("%w: max jump distance %v", ErrInvalidParameter, float64(maxJump))
	}
	origin, err := u.SystemByName(start)
	if err != nil {
		return nil, err
	}
	network, err := u.GateNetwork(origin.ID, usePlayerGates)
	if err != nil {
		return nil, err
	}

	var exits []Exit
	for _, id := range network {
		s := u.Systems[id]
		for _, l := range s.Links {
			if l.Kind != graph.Jump {
				continue
			}
			if l.Distance > maxJump {
				break
			}
			target, ok := u.Systems[l.Target]
			if !ok || target.RegionID == origin.RegionID {
				continue
			}
			exits = append(exits, Exit{
				From:     id,
				To:       l.Target,
				FromName: displayName(u, id),
				ToName:   displayName(u, l.Target),
				ToRegion: target.RegionID,
				Distance: l.Distance,
			})
		}
	}

	sort.SliceStable(exits, func(i, j int) bool {
		if exits[i].Distance != exits[j].Distance {
			return exits[i].Distance < exits[j].Distance
		}
		if exits[i].From != exits[j].From {
			return exits[i].From < exits[j].From
		}
		return exits[i].To < exits[j].To
	})
	return exits, nil
}
