package db

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"eftb/internal/graph/graphtest"

	_ "modernc.org/sqlite"
)

// openTestDB opens an in-memory SQLite DB and runs migrations (for testing only).
func openTestDB(t *testing.T) *DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	// Each pooled connection would get its own empty :memory: database.
	sqlDB.SetMaxOpenConns(1)
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func TestDB_MigrateIsIdempotent(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	var n int
	if err := d.sql.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&n); err != nil {
		t.Fatalf("count versions: %v", err)
	}
	if n != 1 {
		t.Errorf("schema_version rows = %d, want 1", n)
	}
}

func TestDB_SnapshotRoundTrip(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	want := graphtest.Diamond()
	if err := d.SaveUniverse(want, 25); err != nil {
		t.Fatalf("SaveUniverse: %v", err)
	}

	got, err := d.LoadUniverse()
	if err != nil {
		t.Fatalf("LoadUniverse: %v", err)
	}
	if got.Len() != want.Len() {
		t.Fatalf("Len = %d, want %d", got.Len(), want.Len())
	}
	if got.LinkCount() != want.LinkCount() {
		t.Fatalf("LinkCount = %d, want %d", got.LinkCount(), want.LinkCount())
	}
	for id, ws := range want.Systems {
		gs, err := got.System(id)
		if err != nil {
			t.Fatalf("System(%d): %v", id, err)
		}
		if gs.RegionID != ws.RegionID || gs.X != ws.X || gs.Y != ws.Y || gs.Z != ws.Z {
			t.Errorf("system %d = %+v, want %+v", id, gs, ws)
		}
		for i := range ws.Links {
			if gs.Links[i] != ws.Links[i] {
				t.Errorf("system %d link[%d] = %+v, want %+v", id, i, gs.Links[i], ws.Links[i])
			}
		}
		wn, _ := want.Name(id)
		gn, err := got.Name(id)
		if err != nil || gn != wn {
			t.Errorf("Name(%d) = %q, %v; want %q", id, gn, err, wn)
		}
	}
	if err := got.Validate(); err != nil {
		t.Errorf("loaded universe invalid: %v", err)
	}

	info, err := d.Info()
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Systems != 4 || info.MaxJumpLY != 25 || info.BuiltAt.IsZero() {
		t.Errorf("Info = %+v", info)
	}
}

func TestDB_SaveReplacesPreviousSnapshot(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	if err := d.SaveUniverse(graphtest.Grid(3, 1), 1); err != nil {
		t.Fatalf("SaveUniverse grid: %v", err)
	}
	if err := d.SaveUniverse(graphtest.Diamond(), 25); err != nil {
		t.Fatalf("SaveUniverse diamond: %v", err)
	}
	u, err := d.LoadUniverse()
	if err != nil {
		t.Fatalf("LoadUniverse: %v", err)
	}
	if u.Len() != 4 {
		t.Errorf("Len = %d, want 4", u.Len())
	}
}

func TestDB_ChecksumMismatch(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	if err := d.SaveUniverse(graphtest.Diamond(), 25); err != nil {
		t.Fatalf("SaveUniverse: %v", err)
	}
	if _, err := d.sql.Exec("UPDATE links SET distance = distance * 2 WHERE id = 1"); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	if _, err := d.LoadUniverse(); !errors.Is(err, ErrChecksum) {
		t.Fatalf("LoadUniverse err = %v, want ErrChecksum", err)
	}
}

func TestDB_ChecksumCoversRegionAndTarget(t *testing.T) {
	for _, stmt := range []string{
		"UPDATE systems SET region_id = region_id + 7",
		"UPDATE links SET target = system_id WHERE id = 1",
	} {
		d := openTestDB(t)
		if err := d.SaveUniverse(graphtest.Diamond(), 25); err != nil {
			t.Fatalf("SaveUniverse: %v", err)
		}
		if _, err := d.sql.Exec(stmt); err != nil {
			t.Fatalf("corrupt: %v", err)
		}
		if _, err := d.LoadUniverse(); !errors.Is(err, ErrChecksum) {
			t.Errorf("%s: LoadUniverse err = %v, want ErrChecksum", stmt, err)
		}
		d.Close()
	}
}

func TestDB_UnknownLinkKind(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	if err := d.SaveUniverse(graphtest.Diamond(), 25); err != nil {
		t.Fatalf("SaveUniverse: %v", err)
	}
	if _, err := d.sql.Exec("UPDATE links SET kind = 'wormhole' WHERE id = 1"); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	if _, err := d.LoadUniverse(); err == nil {
		t.Fatal("LoadUniverse accepted an unknown link kind")
	}
}

func TestDB_NamesNotCoveredByChecksum(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	if err := d.SaveUniverse(graphtest.Diamond(), 25); err != nil {
		t.Fatalf("SaveUniverse: %v", err)
	}
	if _, err := d.sql.Exec("UPDATE names SET name = 'Renamed' WHERE id = ?", int64(graphtest.A)); err != nil {
		t.Fatalf("rename: %v", err)
	}
	u, err := d.LoadUniverse()
	if err != nil {
		t.Fatalf("LoadUniverse: %v", err)
	}
	if s, err := u.SystemByName("renamed"); err != nil || s.ID != graphtest.A {
		t.Errorf("SystemByName(renamed) = %v, %v", s, err)
	}
}

func TestDB_EmptySnapshot(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	if _, err := d.LoadUniverse(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("LoadUniverse err = %v, want ErrEmpty", err)
	}
}

func TestChecksum_OrderSensitive(t *testing.T) {
	u := graphtest.Diamond()
	before := Checksum(u)

	s := u.Systems[graphtest.A]
	s.Links[0], s.Links[1] = s.Links[1], s.Links[0]
	if Checksum(u) == before {
		t.Error("swapping links did not change the checksum")
	}
	s.Links[0], s.Links[1] = s.Links[1], s.Links[0]
	if Checksum(u) != before {
		t.Error("checksum not deterministic")
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starmap.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := d.SaveUniverse(graphtest.Diamond(), 25); err != nil {
		t.Fatalf("SaveUniverse: %v", err)
	}
	d.Close()

	d, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer d.Close()
	u, err := d.LoadUniverse()
	if err != nil {
		t.Fatalf("LoadUniverse: %v", err)
	}
	if _, err := u.SystemByName("Delta"); err != nil {
		t.Errorf("SystemByName(Delta): %v", err)
	}
	if d.Path() != path {
		t.Errorf("Path = %q", d.Path())
	}
}
