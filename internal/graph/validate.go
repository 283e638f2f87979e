package graph

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidGraph is wrapped by Validate errors.
var ErrInvalidGraph = errors.New("invalid graph")

// Validate checks the invariants queries rely on: every link target exists
// and every system's links are sorted by kind then distance. Only the first
// few problems are reported.
func (u *Universe) Validate() error {
	const maxReported = 5
	var problems []error
	total := 0
	report := func(err error) {
		total++
		if len(problems) < maxReported {
			problems = append(problems, err)
		}
	}

	for _, id := range u.sortedIDs() {
		s := u.Systems[id]
		for i, l := range s.Links {
			if _, ok := u.Systems[l.Target]; !ok {
				report(fmt.Errorf("system %d link %d: target %d missing", id, l.ID, l.Target))
			}
			if i > 0 && LinkLess(l, s.Links[i-1]) {
				report(fmt.Errorf("system %d: link %d (%s %.0fm) out of order", id, l.ID, l.Kind, float64(l.Distance)))
			}
		}
	}
	if total == 0 {
		return nil
	}
	err := errors.Join(problems...)
	if total > len(problems) {
		err = fmt.Errorf("%w\n... and %d more", err, total-len(problems))
	}
	return fmt.Errorf("%w: %d problems: %w", ErrInvalidGraph, total, err)
}

// AsymmetricLink describes a link whose reverse is missing or has a different
// distance.
type AsymmetricLink struct {
	From, To        SystemID
	Kind            LinkKind
	Forward, Return float64 // meters; Return is NaN when there is no reverse link
}

// AsymmetricLinks lists links whose reverse link of the same kind is missing
// or differs in distance by more than tolerance (relative). Player gates are
// directional in the raw data and are skipped.
func (u *Universe) AsymmetricLinks(tolerance float64) []AsymmetricLink {
	var out []AsymmetricLink
	for _, id := range u.sortedIDs() {
		s := u.Systems[id]
		for _, l := range s.Links {
			if l.Kind == PlayerGate {
				continue
			}
			back, ok := u.reverseDistance(l.Target, id, l.Kind)
			fwd := float64(l.Distance)
			if !ok {
				out = append(out, AsymmetricLink{From: id, To: l.Target, Kind: l.Kind, Forward: fwd, Return: math.NaN()})
				continue
			}
			if diff := math.Abs(fwd - back); diff > tolerance*math.Max(fwd, back) {
				out = append(out, AsymmetricLink{From: id, To: l.Target, Kind: l.Kind, Forward: fwd, Return: back})
			}
		}
	}
	return out
}

func (u *Universe) reverseDistance(from, to SystemID, kind LinkKind) (float64, bool) {
	s, ok := u.Systems[from]
	if !ok {
		return 0, false
	}
	for _, l := range s.Links {
		if l.Target == to && l.Kind == kind {
			return float64(l.Distance), true
		}
	}
	return 0, false
}

func (u *Universe) sortedIDs() []SystemID {
	ids := make([]SystemID, 0, len(u.Systems))
	for id := range u.Systems {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
