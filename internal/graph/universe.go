package graph

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"eftb/internal/units"
)

// ErrNotFound is returned for unknown system IDs or names.
var ErrNotFound = errors.New("not found")

type (
	SystemID uint64
	RegionID uint64
	LinkID   uint64
)

// LinkKind is the type of a link. The numeric order is significant: links of a
// system are sorted gates-first, see SortLinks.
type LinkKind uint8

const (
	FixedGate LinkKind = iota
	PlayerGate
	Jump
)

func (k LinkKind) String() string {
	switch k {
	case FixedGate:
		return "fixed_gate"
	case PlayerGate:
		return "player_gate"
	case Jump:
		return "jump"
	}
	return fmt.Sprintf("LinkKind(%d)", uint8(k))
}

// IsGate reports whether the link is a fixed or player gate.
func (k LinkKind) IsGate() bool { return k == FixedGate || k == PlayerGate }

// ParseLinkKind accepts the names returned by String plus the raw-data aliases
// "npc_gate" and "smart_gate".
func ParseLinkKind(s string) (LinkKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed_gate", "npc_gate":
		return FixedGate, nil
	case "player_gate", "smart_gate":
		return PlayerGate, nil
	case "jump":
		return Jump, nil
	}
	return 0, fmt.Errorf("unknown link kind %q", s)
}

// Link is a directed edge. Two links are the same link iff their IDs match.
type Link struct {
	ID       LinkID
	Kind     LinkKind
	Distance units.Meters
	Target   SystemID
}

// LinkLess orders links by kind, then by ascending distance.
func LinkLess(a, b Link) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.Distance < b.Distance
}

// SolarSystem is a node of the star graph. Coordinates are in meters.
type SolarSystem struct {
	ID       SystemID
	RegionID RegionID
	X, Y, Z  float64
	Links    []Link // sorted by LinkLess
}

// Universe holds every solar system keyed by ID plus the name index.
// It is built once (by the builder or the snapshot loader) and is read-only
// afterwards, so it can be shared by concurrent queries without locking.
type Universe struct {
	Systems map[SystemID]*SolarSystem

	names   map[SystemID]string
	byName  map[string]SystemID
	byLower map[string]SystemID // lowercase name -> systemID
}

// NewUniverse creates an empty Universe with initialized maps.
func NewUniverse() *Universe {
	return &Universe{
		Systems: make(map[SystemID]*SolarSystem),
		names:   make(map[SystemID]string),
		byName:  make(map[string]SystemID),
		byLower: make(map[string]SystemID),
	}
}

// AddSystem inserts or replaces a system.
func (u *Universe) AddSystem(s *SolarSystem) {
	u.Systems[s.ID] = s
}

// AddLink appends a link to the outgoing links of from. It does not keep the
// order; call SortLinks once all links are in.
func (u *Universe) AddLink(from SystemID, l Link) error {
	s, ok := u.Systems[from]
	if !ok {
		return fmt.Errorf("system %d: %w", from, ErrNotFound)
	}
	s.Links = append(s.Links, l)
	return nil
}

// SortLinks orders every system's links by kind then distance.
func (u *Universe) SortLinks() {
	for _, s := range u.Systems {
		sort.SliceStable(s.Links, func(i, j int) bool { return LinkLess(s.Links[i], s.Links[j]) })
	}
}

// SetName associates a display name with a system.
func (u *Universe) SetName(id SystemID, name string) {
	if old, ok := u.names[id]; ok {
		delete(u.byName, old)
		delete(u.byLower, strings.ToLower(old))
	}
	u.names[id] = name
	u.byName[name] = id
	u.byLower[strings.ToLower(name)] = id
}

// Len returns the number of systems.
func (u *Universe) Len() int { return len(u.Systems) }

// LinkCount returns the total number of links.
func (u *Universe) LinkCount() int {
	n := 0
	for _, s := range u.Systems {
		n += len(s.Links)
	}
	return n
}

// System returns the system with the given ID.
func (u *Universe) System(id SystemID) (*SolarSystem, error) {
	s, ok := u.Systems[id]
	if !ok {
		return nil, fmt.Errorf("solar system %d: %w", id, ErrNotFound)
	}
	return s, nil
}

// SystemByName resolves a system by exact name, falling back to a
// case-insensitive match.
func (u *Universe) SystemByName(name string) (*SolarSystem, error) {
	id, ok := u.byName[name]
	if !ok {
		id, ok = u.byLower[strings.ToLower(strings.TrimSpace(name))]
	}
	if !ok {
		return nil, fmt.Errorf("solar system %q: %w", name, ErrNotFound)
	}
	s, ok := u.Systems[id]
	if !ok {
		return nil, fmt.Errorf("solar system %q (id %d): %w", name, id, ErrNotFound)
	}
	return s, nil
}

// Name returns the display name of a system.
func (u *Universe) Name(id SystemID) (string, error) {
	name, ok := u.names[id]
	if !ok {
		return "", fmt.Errorf("name of solar system %d: %w", id, ErrNotFound)
	}
	return name, nil
}

// Names returns every known system name, sorted.
func (u *Universe) Names() []string {
	out := make([]string, 0, len(u.names))
	for _, n := range u.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// MatchNames returns up to limit names matching q case-insensitively: an
// exact match first, then prefix matches, then names containing q. Each
// group is sorted. A limit <= 0 means no limit.
func (u *Universe) MatchNames(q string, limit int) []string {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}
	var exact, prefix, contains []string
	for lower, id := range u.byLower {
		switch {
		case lower == q:
			exact = append(exact, u.names[id])
		case strings.HasPrefix(lower, q):
			prefix = append(prefix, u.names[id])
		case strings.Contains(lower, q):
			contains = append(contains, u.names[id])
		}
	}
	sort.Strings(prefix)
	sort.Strings(contains)
	out := append(append(exact, prefix...), contains...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// NameIndex returns a copy of the id -> name table.
func (u *Universe) NameIndex() map[SystemID]string {
	out := make(map[SystemID]string, len(u.names))
	for id, n := range u.names {
		out[id] = n
	}
	return out
}

// Distance returns the straight-line distance between two systems.
func Distance(a, b *SolarSystem) units.Meters {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return units.Meters(math.Sqrt(dx*dx + dy*dy + dz*dz))
}
