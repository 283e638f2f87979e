package engine

import (
	"errors"
	"testing"

	"eftb/internal/graph"
	"eftb/internal/graph/graphtest"
	"eftb/internal/units"
)

func TestFindExits_FixedGatesOnly(t *testing.T) {
	u := graphtest.Diamond()
	exits, err := FindExits(u, "Alpha", units.FromLightYears(10), false)
	if err != nil {
		t.Fatalf("FindExits: %v", err)
	}
	if len(exits) != 1 {
		t.Fatalf("exits = %+v, want exactly Alpha -> Bravo", exits)
	}
	e := exits[0]
	if e.From != graphtest.A || e.To != graphtest.B || e.FromName != "Alpha" || e.ToName != "Bravo" {
		t.Errorf("exit = %+v, want Alpha -> Bravo", e)
	}
	if e.ToRegion != 2 {
		t.Errorf("ToRegion = %d, want 2", e.ToRegion)
	}
}

func TestFindExits_PlayerGatesAddOriginsWithoutDedup(t *testing.T) {
	u := graphtest.Diamond()
	exits, err := FindExits(u, "Alpha", units.FromLightYears(10), true)
	if err != nil {
		t.Fatalf("FindExits: %v", err)
	}
	// Alpha -> Bravo and, through the player gate to Charlie, Charlie -> Bravo.
	if len(exits) != 2 {
		t.Fatalf("exits = %+v, want 2", exits)
	}
	origins := map[graph.SystemID]bool{}
	for _, e := range exits {
		if e.To != graphtest.B {
			t.Errorf("exit %+v, want destination Bravo", e)
		}
		origins[e.From] = true
	}
	if !origins[graphtest.A] || !origins[graphtest.C] {
		t.Errorf("origins = %v, want Alpha and Charlie", origins)
	}
}

func TestFindExits_NeverSameRegion(t *testing.T) {
	u := graphtest.Grid(8, 2)
	// Gates along column 0 keep the gate network non-trivial.
	for r := 0; r < 7; r++ {
		a, b := graph.SystemID(r*8+1), graph.SystemID((r+1)*8+1)
		u.AddLink(a, graph.Link{ID: graph.LinkID(100000 + 2*r), Kind: graph.FixedGate, Distance: graph.Distance(u.Systems[a], u.Systems[b]), Target: b})
		u.AddLink(b, graph.Link{ID: graph.LinkID(100001 + 2*r), Kind: graph.FixedGate, Distance: graph.Distance(u.Systems[a], u.Systems[b]), Target: a})
	}
	u.SortLinks()

	for _, s := range u.Systems {
		name, _ := u.Name(s.ID)
		exits, err := FindExits(u, name, units.FromLightYears(2), false)
		if err != nil {
			t.Fatalf("FindExits(%s): %v", name, err)
		}
		for _, e := range exits {
			if u.Systems[e.To].RegionID == s.RegionID {
				t.Errorf("FindExits(%s) returned same-region exit %+v", name, e)
			}
			if e.Distance > units.FromLightYears(2) {
				t.Errorf("FindExits(%s) returned over-range exit %+v", name, e)
			}
		}
	}
}

func TestFindExits_Errors(t *testing.T) {
	u := graphtest.Diamond()
	if _, err := FindExits(u, "Nowhere", units.FromLightYears(10), false); !errors.Is(err, graph.ErrNotFound) {
		t.Errorf("unknown start err = %v, want ErrNotFound", err)
	}
	if _, err := FindExits(u, "Alpha", -1, false); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("negative jump err = %v, want ErrInvalidParameter", err)
	}
}

func TestFindExits_ZeroRange(t *testing.T) {
	u := graphtest.Diamond()
	exits, err := FindExits(u, "Alpha", 0, true)
	if err != nil {
		t.Fatalf("FindExits: %v", err)
	}
	if len(exits) != 0 {
		t.Errorf("exits = %+v, want none", exits)
	}
}
