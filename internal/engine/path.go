package engine

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"eftb/internal/astar"
	"eftb/internal/graph"
	"eftb/internal/units"
)

// pathSearch holds the per-query parameters the search closures need.
// Search states are links: "arrived at link.Target via link". The start
// state is a synthetic zero-length link into the start system (ID 0, which
// the builder never assigns).
type pathSearch struct {
	u           *graph.Universe
	goal        *graph.SolarSystem
	maxJump     units.Meters
	optimize    Optimize
	playerGates bool
}

// successors lists the links out of the system the state arrived at.
// Links are sorted gates-first then by distance, so the scan stops at the
// first jump longer than maxJump.
func (ps *pathSearch) successors(arrival graph.Link) []astar.Edge[graph.Link, float64] {
	s, ok := ps.u.Systems[arrival.Target]
	if !ok {
		return nil
	}
	out := make([]astar.Edge[graph.Link, float64], 0, len(s.Links))
	for _, l := range s.Links {
		if l.Kind == graph.Jump && l.Distance > ps.maxJump {
			break
		}
		if l.Kind == graph.PlayerGate && !ps.playerGates {
			continue
		}
		out = append(out, astar.Edge[graph.Link, float64]{To: l, Cost: LinkCost(l, ps.optimize)})
	}
	return out
}

func (ps *pathSearch) heuristic(arrival graph.Link) float64 {
	s, ok := ps.u.Systems[arrival.Target]
	if !ok {
		return 0
	}
	return Heuristic(ps.optimize, s, ps.goal)
}

func (ps *pathSearch) isGoal(arrival graph.Link) bool {
	return arrival.Target == ps.goal.ID
}

// MaxTimeout is the longest search timeout a query may ask for.
const MaxTimeout = 24 * time.Hour

// TimeoutFromSeconds converts a timeout in seconds to a duration. Zero means
// no timeout. Values outside [0, MaxTimeout] are ErrInvalidParameter.
func TimeoutFromSeconds(secs float64) (time.Duration, error) {
	if math.IsNaN(secs) || secs < 0 || secs > MaxTimeout.Seconds() {
		return 0, fmt.Errorf("%w: timeout %v s, want 0 to %v s", ErrInvalidParameter, secs, MaxTimeout.Seconds())
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// FindPath returns the cheapest route for q.
//
// Errors: graph.ErrNotFound for unknown names, ErrInvalidParameter for a bad
// jump distance or timeout, ErrNoPath when nothing satisfies the constraints
// and ErrTimeout when q.Timeout elapses first.
func FindPath(u *graph.Universe, q PathQuery) (*Path, error) {
	if math.IsNaN(float64(q.MaxJump)) || q.MaxJump < 0 {
		return nil, fmt.Errorf("%w: max jump distance %v", ErrInvalidParameter, float64(q.MaxJump))
	}
	if q.Timeout < 0 {
		return nil, fmt.Errorf("%w: timeout %v", ErrInvalidParameter, q.Timeout)
	}
	start, err := u.SystemByName(q.Start)
	if err != nil {
		return nil, err
	}
	end, err := u.SystemByName(q.End)
	if err != nil {
		return nil, err
	}

	ps := &pathSearch{
		u:           u,
		goal:        end,
		maxJump:     q.MaxJump,
		optimize:    q.Optimize,
		playerGates: q.UsePlayerGates,
	}
	var opts []astar.Option
	if q.Timeout > 0 {
		opts = append(opts, astar.WithDeadline(time.Now().Add(q.Timeout)))
	}

	initial := graph.Link{ID: 0, Kind: graph.Jump, Distance: 0, Target: start.ID}
	res, err := astar.Search(initial, ps.successors, ps.heuristic, ps.isGoal, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s -> %s: %w", displayName(u, start.ID), displayName(u, end.ID), searchError(err))
	}

	path := &Path{Cost: res.Cost, Expanded: res.Expanded}
	// res.Path[0] is the synthetic initial link.
	from := start.ID
	for _, l := range res.Path[1:] {
		path.Steps = append(path.Steps, PathStep{
			Kind:     l.Kind,
			Distance: l.Distance,
			From:     from,
			To:       l.Target,
			FromName: displayName(u, from),
			ToName:   displayName(u, l.Target),
		})
		from = l.Target
	}
	return path, nil
}

// SystemDistance returns the straight-line distance between two named systems.
func SystemDistance(u *graph.Universe, a, b string) (units.Meters, error) {
	sa, err := u.SystemByName(a)
	if err != nil {
		return 0, err
	}
	sb, err := u.SystemByName(b)
	if err != nil {
		return 0, err
	}
	return graph.Distance(sa, sb), nil
}

// displayName is the system name, or its numeric ID for unnamed systems.
func displayName(u *graph.Universe, id graph.SystemID) string {
	if name, err := u.Name(id); err == nil {
		return name
	}
	return strconv.FormatUint(uint64(id), 10)
}
