// Package graphtest builds small universes for tests.
package graphtest

import (
	"fmt"
	"sort"

	"eftb/internal/graph"
	"eftb/internal/units"
)

// Diamond system IDs.
const (
	A graph.SystemID = 1
	B graph.SystemID = 2
	C graph.SystemID = 3
	D graph.SystemID = 4
)

// Builder assembles a universe link by link, numbering links in insertion order.
type Builder struct {
	U      *graph.Universe
	nextID graph.LinkID
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{U: graph.NewUniverse(), nextID: 1}
}

// System adds a system at (x, y, z) light-years.
func (b *Builder) System(id graph.SystemID, region graph.RegionID, name string, x, y, z float64) {
	b.U.AddSystem(&graph.SolarSystem{
		ID:       id,
		RegionID: region,
		X:        float64(units.FromLightYears(x)),
		Y:        float64(units.FromLightYears(y)),
		Z:        float64(units.FromLightYears(z)),
	})
	b.U.SetName(id, name)
}

// Link adds a one-way link whose distance is the Euclidean distance between
// the two systems.
func (b *Builder) Link(kind graph.LinkKind, from, to graph.SystemID) {
	fs, ts := b.U.Systems[from], b.U.Systems[to]
	if fs == nil || ts == nil {
		panic(fmt.Sprintf("graphtest: link %d -> %d references unknown system", from, to))
	}
	b.U.AddLink(from, graph.Link{ID: b.nextID, Kind: kind, Distance: graph.Distance(fs, ts), Target: to})
	b.nextID++
}

// Both adds the link in both directions.
func (b *Builder) Both(kind graph.LinkKind, x, y graph.SystemID) {
	b.Link(kind, x, y)
	b.Link(kind, y, x)
}

// Jumps adds jump links in both directions between every pair of systems
// closer than maxLY light-years.
func (b *Builder) Jumps(maxLY float64) {
	limit := units.FromLightYears(maxLY)
	ids := make([]graph.SystemID, 0, len(b.U.Systems))
	for id := range b.U.Systems {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, x := range ids {
		for _, y := range ids {
			if x != y && graph.Distance(b.U.Systems[x], b.U.Systems[y]) <= limit {
				b.Link(graph.Jump, x, y)
			}
		}
	}
}

// Done sorts links and returns the universe.
func (b *Builder) Done() *graph.Universe {
	b.U.SortLinks()
	return b.U
}

// Diamond returns four systems:
//
//	A(0,0) region 1, B(10,0) region 2, C(20,0) region 2, D(10,20) region 3
//
// with a fixed gate A<->D, a player gate D<->C and jumps between every pair
// within 25 ly.
func Diamond() *graph.Universe {
	b := NewBuilder()
	b.System(A, 1, "Alpha", 0, 0, 0)
	b.System(B, 2, "Bravo", 10, 0, 0)
	b.System(C, 2, "Charlie", 20, 0, 0)
	b.System(D, 3, "Delta", 10, 20, 0)
	b.Both(graph.FixedGate, A, D)
	b.Both(graph.PlayerGate, D, C)
	b.Jumps(25)
	return b.Done()
}

// Grid returns an n*n lattice spaced spacingLY light-years apart with jump
// links between orthogonal neighbours only (jumps of exactly spacingLY).
// Each row is its own region. System IDs are row*n+col+1 and names "r<row>c<col>".
func Grid(n int, spacingLY float64) *graph.Universe {
	b := NewBuilder()
	id := func(r, c int) graph.SystemID { return graph.SystemID(r*n + c + 1) }
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			b.System(id(r, c), graph.RegionID(r+1), fmt.Sprintf("r%dc%d", r, c),
				float64(c)*spacingLY, float64(r)*spacingLY, 0)
		}
	}
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if c+1 < n {
				b.Both(graph.Jump, id(r, c), id(r, c+1))
			}
			if r+1 < n {
				b.Both(graph.Jump, id(r, c), id(r+1, c))
			}
		}
	}
	return b.Done()
}
