package db

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"eftb/internal/graph"
	"eftb/internal/units"
)

// ErrChecksum means the stored snapshot does not match its checksum.
var ErrChecksum = errors.New("snapshot checksum mismatch")

// ErrEmpty means the database holds no snapshot.
var ErrEmpty = errors.New("snapshot is empty")

// SnapshotInfo describes the stored snapshot.
type SnapshotInfo struct {
	Systems   int
	Links     int
	Checksum  uint64
	BuiltAt   time.Time
	MaxJumpLY float64 // longest jump link the builder generated
}

// SaveUniverse replaces the stored snapshot with u. maxJumpLY is recorded as
// metadata only.
func (d *DB) SaveUniverse(u *graph.Universe, maxJumpLY float64) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"links", "systems", "names", "meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	sysStmt, err := tx.Prepare("INSERT INTO systems (id, region_id, x, y, z) VALUES (?,?,?,?,?)")
	if err != nil {
		return err
	}
	defer sysStmt.Close()
	linkStmt, err := tx.Prepare("INSERT INTO links (id, system_id, ord, kind, distance, target) VALUES (?,?,?,?,?,?)")
	if err != nil {
		return err
	}
	defer linkStmt.Close()
	nameStmt, err := tx.Prepare("INSERT INTO names (id, name) VALUES (?,?)")
	if err != nil {
		return err
	}
	defer nameStmt.Close()

	for _, s := range sortedSystems(u) {
		if _, err := sysStmt.Exec(int64(s.ID), int64(s.RegionID), s.X, s.Y, s.Z); err != nil {
			return fmt.Errorf("insert system %d: %w", s.ID, err)
		}
		for i, l := range s.Links {
			if _, err := linkStmt.Exec(int64(l.ID), int64(s.ID), i, l.Kind.String(), float64(l.Distance), int64(l.Target)); err != nil {
				return fmt.Errorf("insert link %d: %w", l.ID, err)
			}
		}
	}
	for id, name := range u.NameIndex() {
		if _, err := nameStmt.Exec(int64(id), name); err != nil {
			return fmt.Errorf("insert name %d: %w", id, err)
		}
	}

	meta := map[string]string{
		"checksum":    strconv.FormatUint(Checksum(u), 16),
		"built_at":    time.Now().UTC().Format(time.RFC3339),
		"max_jump_ly": strconv.FormatFloat(maxJumpLY, 'f', -1, 64),
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT INTO meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// LoadUniverse reads the stored snapshot, including the names table, and
// verifies its checksum.
func (d *DB) LoadUniverse() (*graph.Universe, error) {
	u := graph.NewUniverse()

	rows, err := d.sql.Query("SELECT id, region_id, x, y, z FROM systems")
	if err != nil {
		return nil, fmt.Errorf("query systems: %w", err)
	}
	for rows.Next() {
		var id, region int64
		s := &graph.SolarSystem{}
		if err := rows.Scan(&id, &region, &s.X, &s.Y, &s.Z); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan system: %w", err)
		}
		s.ID, s.RegionID = graph.SystemID(id), graph.RegionID(region)
		u.AddSystem(s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if u.Len() == 0 {
		return nil, ErrEmpty
	}

	rows, err = d.sql.Query("SELECT id, system_id, kind, distance, target FROM links ORDER BY system_id, ord")
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	for rows.Next() {
		var id, systemID, target int64
		var kindName string
		var dist float64
		if err := rows.Scan(&id, &systemID, &kindName, &dist, &target); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan link: %w", err)
		}
		kind, err := graph.ParseLinkKind(kindName)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("link %d: %w", id, err)
		}
		l := graph.Link{ID: graph.LinkID(id), Kind: kind, Distance: units.Meters(dist), Target: graph.SystemID(target)}
		if err := u.AddLink(graph.SystemID(systemID), l); err != nil {
			rows.Close()
			return nil, fmt.Errorf("link %d: %w", id, err)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	names, err := d.LoadNames()
	if err != nil {
		return nil, err
	}
	for id, name := range names {
		u.SetName(id, name)
	}

	info, err := d.Info()
	if err != nil {
		return nil, err
	}
	if got := Checksum(u); got != info.Checksum {
		return nil, fmt.Errorf("%w: stored %x, computed %x", ErrChecksum, info.Checksum, got)
	}
	return u, nil
}

// LoadNames returns the id -> name table.
func (d *DB) LoadNames() (map[graph.SystemID]string, error) {
	rows, err := d.sql.Query("SELECT id, name FROM names")
	if err != nil {
		return nil, fmt.Errorf("query names: %w", err)
	}
	defer rows.Close()

	names := make(map[graph.SystemID]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names[graph.SystemID(id)] = name
	}
	return names, rows.Err()
}

// Info returns metadata about the stored snapshot.
func (d *DB) Info() (SnapshotInfo, error) {
	var info SnapshotInfo
	d.sql.QueryRow("SELECT COUNT(*) FROM systems").Scan(&info.Systems)
	d.sql.QueryRow("SELECT COUNT(*) FROM links").Scan(&info.Links)

	rows, err := d.sql.Query("SELECT key, value FROM meta")
	if err != nil {
		return info, fmt.Errorf("query meta: %w", err)
	}
	defer rows.Close()
	m := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return info, fmt.Errorf("scan meta: %w", err)
		}
		m[k] = v
	}
	if err := rows.Err(); err != nil {
		return info, err
	}

	if v, ok := m["checksum"]; ok {
		if info.Checksum, err = strconv.ParseUint(v, 16, 64); err != nil {
			return info, fmt.Errorf("meta checksum %q: %w", v, err)
		}
	}
	if v, ok := m["built_at"]; ok {
		info.BuiltAt, _ = time.Parse(time.RFC3339, v)
	}
	if v, ok := m["max_jump_ly"]; ok {
		info.MaxJumpLY, _ = strconv.ParseFloat(v, 64)
	}
	return info, nil
}

// Checksum hashes the systems and links of u in ID order. Names are not
// covered: they come from a separate table and may be refreshed alone.
func Checksum(u *graph.Universe) uint64 {
	h := xxhash.New()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	for _, s := range sortedSystems(u) {
		put(uint64(s.ID))
		put(uint64(s.RegionID))
		put(math.Float64bits(s.X))
		put(math.Float64bits(s.Y))
		put(math.Float64bits(s.Z))
		put(uint64(len(s.Links)))
		for _, l := range s.Links {
			put(uint64(l.ID))
			put(uint64(l.Kind))
			put(math.Float64bits(float64(l.Distance)))
			put(uint64(l.Target))
		}
	}
	return h.Sum64()
}

func sortedSystems(u *graph.Universe) []*graph.SolarSystem {
	out := make([]*graph.SolarSystem, 0, u.Len())
	for _, s := range u.Systems {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
