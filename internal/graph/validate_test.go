package graph_test

import (
	"errors"
	"math"
	"testing"

	"eftb/internal/graph"
	"eftb/internal/graph/graphtest"
)

func TestValidate_MissingTarget(t *testing.T) {
	u := graphtest.Diamond()
	u.AddLink(graphtest.A, graph.Link{ID: 999, Kind: graph.Jump, Distance: 1e30, Target: 42})

	err := u.Validate()
	if !errors.Is(err, graph.ErrInvalidGraph) {
		t.Fatalf("Validate() = %v, want ErrInvalidGraph", err)
	}
}

func TestValidate_OutOfOrder(t *testing.T) {
	u := graphtest.Diamond()
	// A fixed gate after the jumps breaks the gates-first order.
	u.AddLink(graphtest.A, graph.Link{ID: 999, Kind: graph.FixedGate, Distance: 1, Target: graphtest.B})
	if err := u.Validate(); !errors.Is(err, graph.ErrInvalidGraph) {
		t.Fatalf("Validate() = %v, want ErrInvalidGraph", err)
	}
	u.SortLinks()
	if err := u.Validate(); err != nil {
		t.Fatalf("Validate() after SortLinks = %v", err)
	}
}

func TestAsymmetricLinks(t *testing.T) {
	u := graphtest.Diamond()
	if got := u.AsymmetricLinks(1e-9); len(got) != 0 {
		t.Fatalf("diamond AsymmetricLinks = %+v, want none", got)
	}

	// One-way jump B -> D with no reverse.
	b := graphtest.NewBuilder()
	b.System(1, 1, "One", 0, 0, 0)
	b.System(2, 1, "Two", 5, 0, 0)
	b.Link(graph.Jump, 1, 2)
	u = b.Done()

	got := u.AsymmetricLinks(1e-9)
	if len(got) != 1 {
		t.Fatalf("AsymmetricLinks = %+v, want 1 entry", got)
	}
	if got[0].From != 1 || got[0].To != 2 || !math.IsNaN(got[0].Return) {
		t.Errorf("AsymmetricLinks[0] = %+v", got[0])
	}
}
