package sde

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"eftb/internal/graph"
	"eftb/internal/logger"
	"eftb/internal/units"
)

// BuildOptions controls graph construction.
type BuildOptions struct {
	MaxJump units.Meters // jump links are generated strictly below this distance
	Workers int          // parallel jump scanners; <= 0 means GOMAXPROCS
}

// Build turns parsed raw data into a sorted universe with gate and jump
// links. Link IDs are assigned in a deterministic order: gates as they appear
// in the input, then jumps by source system ID and distance.
func Build(ctx context.Context, raw *Raw, opts BuildOptions) (*graph.Universe, error) {
	u := graph.NewUniverse()
	for _, rs := range raw.Systems {
		u.AddSystem(&graph.SolarSystem{ID: rs.ID, RegionID: rs.RegionID, X: rs.X, Y: rs.Y, Z: rs.Z})
	}
	for id, name := range raw.Names {
		if _, ok := u.Systems[id]; ok {
			u.SetName(id, name)
		}
	}

	logger.Info("Build", "Building gate links...")
	nextID := graph.LinkID(1)
	seen := make(map[rawGate]bool)
	skipped := 0
	for _, g := range raw.Gates {
		from, to := u.Systems[g.From], u.Systems[g.To]
		if from == nil || to == nil || g.From == g.To {
			if g.Kind == graph.FixedGate {
				return nil, fmt.Errorf("gate %d -> %d: %w", g.From, g.To, graph.ErrNotFound)
			}
			skipped++
			continue
		}
		// Fixed gates are listed once per pair; player gates once per direction.
		pairs := []rawGate{g}
		if g.Kind == graph.FixedGate {
			pairs = append(pairs, rawGate{From: g.To, To: g.From, Kind: g.Kind})
		}
		for _, p := range pairs {
			if seen[p] {
				continue
			}
			seen[p] = true
			u.AddLink(p.From, graph.Link{
				ID:       nextID,
				Kind:     p.Kind,
				Distance: graph.Distance(u.Systems[p.From], u.Systems[p.To]),
				Target:   p.To,
			})
			nextID++
		}
	}
	if skipped > 0 {
		logger.Warn("Build", fmt.Sprintf("Skipped %d player gates with unknown or looping endpoints", skipped))
	}

	logger.Info("Build", fmt.Sprintf("Building jump links under %s...", opts.MaxJump))
	jumps, err := buildJumps(ctx, u, opts)
	if err != nil {
		return nil, err
	}
	ids := make([]graph.SystemID, 0, u.Len())
	for id := range u.Systems {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for i, id := range ids {
		for _, l := range jumps[i] {
			l.ID = nextID
			nextID++
			u.AddLink(id, l)
		}
	}

	logger.Info("Build", "Sorting links...")
	u.SortLinks()
	if err := u.Validate(); err != nil {
		return nil, err
	}

	logger.Section("Starmap Statistics")
	logger.Stats("Systems", u.Len())
	logger.Stats("Named systems", len(u.NameIndex()))
	logger.Stats("Gate links", len(seen))
	logger.Stats("Total links", u.LinkCount())
	return u, nil
}

// buildJumps computes, per system in ID order, the jump links to every other
// system strictly closer than opts.MaxJump. Link IDs are left zero.
func buildJumps(ctx context.Context, u *graph.Universe, opts BuildOptions) ([][]graph.Link, error) {
	systems := make([]*graph.SolarSystem, 0, u.Len())
	for _, s := range u.Systems {
		systems = append(systems, s)
	}
	sort.Slice(systems, func(i, j int) bool { return systems[i].ID < systems[j].ID })

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([][]graph.Link, len(systems))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, from := range systems {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var links []graph.Link
			for _, to := range systems {
				if to.ID == from.ID {
					continue
				}
				if d := graph.Distance(from, to); d < opts.MaxJump {
					links = append(links, graph.Link{Kind: graph.Jump, Distance: d, Target: to.ID})
				}
			}
			sort.SliceStable(links, func(a, b int) bool { return links[a].Distance < links[b].Distance })
			out[i] = links
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build jumps: %w", err)
	}
	return out, nil
}
