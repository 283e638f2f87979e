package sde

import (
	"context"
	"fmt"
	"os"

	"eftb/internal/db"
	"eftb/internal/logger"
)

// BuildSnapshot fetches the raw data if needed, builds the universe and
// writes the snapshot and the names file into dataDir.
func BuildSnapshot(ctx context.Context, dataDir, rawURL string, opts BuildOptions) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	if err := Fetch(ctx, dataDir, rawURL); err != nil {
		return err
	}
	raw, err := ReadRaw(RawDir(dataDir))
	if err != nil {
		return err
	}
	u, err := Build(ctx, raw, opts)
	if err != nil {
		return err
	}

	logger.Info("Build", "Saving snapshot...")
	store, err := db.Open(SnapshotPath(dataDir))
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.SaveUniverse(u, opts.MaxJump.LightYears()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := WriteNames(NamesPath(dataDir), u); err != nil {
		return fmt.Errorf("write names: %w", err)
	}
	logger.Success("Build", fmt.Sprintf("Snapshot written to %s", SnapshotPath(dataDir)))
	return nil
}
