// Package sde builds the star map snapshot from raw world dumps and loads it
// back at startup.
package sde

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"eftb/internal/db"
	"eftb/internal/graph"
	"eftb/internal/logger"
)

// Files inside the data directory.
const (
	SnapshotFile = "starmap.db"
	NamesExport  = "names.json"
	rawDirName   = "raw"
)

// asymmetryTolerance is the relative difference above which a link and its
// reverse are reported as asymmetric.
const asymmetryTolerance = 1e-9

// SnapshotPath returns the snapshot database path for dataDir.
func SnapshotPath(dataDir string) string { return filepath.Join(dataDir, SnapshotFile) }

// NamesPath returns the exported names file path for dataDir.
func NamesPath(dataDir string) string { return filepath.Join(dataDir, NamesExport) }

// RawDir returns the directory holding the raw dumps.
func RawDir(dataDir string) string { return filepath.Join(dataDir, rawDirName) }

// LoadError reports a failure to produce a usable universe at startup.
type LoadError struct {
	Op  string
	Err error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load %s: %v", e.Op, e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }

// LoadUniverse opens the snapshot in dataDir, joins in the exported names
// file when present and validates the result.
func LoadUniverse(dataDir string) (*graph.Universe, error) {
	path := SnapshotPath(dataDir)
	if _, err := os.Stat(path); err != nil {
		return nil, &LoadError{Op: "snapshot", Err: fmt.Errorf("%s: %w (run the build command first)", path, err)}
	}

	logger.Info("Load", "Loading snapshot...")
	store, err := db.Open(path)
	if err != nil {
		return nil, &LoadError{Op: "snapshot", Err: err}
	}
	defer store.Close()

	u, err := store.LoadUniverse()
	if err != nil {
		return nil, &LoadError{Op: "snapshot", Err: err}
	}

	names, err := ReadNames(NamesPath(dataDir))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("Load", "No names file, using snapshot names")
	case err != nil:
		return nil, &LoadError{Op: "names", Err: err}
	default:
		for id, name := range names {
			if _, ok := u.Systems[id]; ok {
				u.SetName(id, name)
			}
		}
	}

	if err := u.Validate(); err != nil {
		return nil, &LoadError{Op: "validate", Err: err}
	}
	if asym := u.AsymmetricLinks(asymmetryTolerance); len(asym) > 0 {
		logger.Warn("Load", fmt.Sprintf("%d links have a missing or different reverse link", len(asym)))
	}

	logger.Section("Starmap")
	logger.Stats("Systems", u.Len())
	logger.Stats("Links", u.LinkCount())
	logger.Stats("Names", len(u.NameIndex()))
	return u, nil
}

type nameEntry struct {
	ID   graph.SystemID `json:"id"`
	Name string         `json:"name"`
}

// WriteNames exports the name index of u as a JSON array sorted by ID.
func WriteNames(path string, u *graph.Universe) error {
	index := u.NameIndex()
	entries := make([]nameEntry, 0, len(index))
	for id, name := range index {
		entries = append(entries, nameEntry{ID: id, Name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
