// Package db stores the star map snapshot in SQLite.
package db

import (
	"database/sql"
	"fmt"

	"eftb/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql  *sql.DB
	path string
}

// Open opens (or creates) the snapshot database at path and runs migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Path returns the file the database was opened from.
func (d *DB) Path() string {
	return d.path
}

func (d *DB) migrate() error {
	version := 0
	// Missing table on a fresh file leaves version at 0.
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS systems (
				id        INTEGER PRIMARY KEY,
				region_id INTEGER NOT NULL,
				x         REAL NOT NULL,
				y         REAL NOT NULL,
				z         REAL NOT NULL
			);

			CREATE TABLE IF NOT EXISTS links (
				id        INTEGER PRIMARY KEY,
				system_id INTEGER NOT NULL REFERENCES systems(id),
				ord       INTEGER NOT NULL,
				kind      TEXT NOT NULL,
				distance  REAL NOT NULL,
				target    INTEGER NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_links_system ON links(system_id, ord);

			CREATE TABLE IF NOT EXISTS names (
				id   INTEGER PRIMARY KEY,
				name TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS meta (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	return nil
}
