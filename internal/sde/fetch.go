package sde

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"eftb/internal/logger"
)

// rawFiles are the bundle entries the builder reads. Anything else in the
// archive is ignored.
var rawFiles = map[string]bool{StarmapFile: true, SmartGatesFile: true, NamesFile: true}

// Fetch downloads the raw bundle from url and unpacks the files the builder
// reads into the raw directory. It does nothing when the starmap is already
// present.
func Fetch(ctx context.Context, dataDir, url string) error {
	rawDir := RawDir(dataDir)
	if _, err := os.Stat(filepath.Join(rawDir, StarmapFile)); err == nil {
		return nil
	}
	if url == "" {
		return fmt.Errorf("%s not found in %s and no raw URL configured", StarmapFile, rawDir)
	}
	if err := os.MkdirAll(rawDir, 0755); err != nil {
		return err
	}

	bundle, err := os.CreateTemp(dataDir, "raw-*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(bundle.Name())

	logger.Info("Fetch", "Downloading raw data...")
	n, err := download(ctx, bundle, url)
	bundle.Close()
	if err != nil {
		return fmt.Errorf("download raw data: %w", err)
	}
	logger.Info("Fetch", fmt.Sprintf("Downloaded %s", humanize.Bytes(uint64(n))))

	got, err := unpackRaw(bundle.Name(), rawDir)
	if err != nil {
		return fmt.Errorf("unpack raw data: %w", err)
	}
	if !got[StarmapFile] {
		return fmt.Errorf("unpack raw data: bundle has no %s", StarmapFile)
	}
	logger.Success("Fetch", fmt.Sprintf("Unpacked %d raw files", len(got)))
	return nil
}

func download(ctx context.Context, dst io.Writer, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.Copy(dst, resp.Body)
}

// unpackRaw copies the known raw files out of the bundle, matching entries by
// base name so nested folders in the archive do not matter. Each file is
// written under a temporary name and renamed into place.
func unpackRaw(bundle, rawDir string) (map[string]bool, error) {
	r, err := zip.OpenReader(bundle)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	got := make(map[string]bool)
	for _, f := range r.File {
		name := path.Base(f.Name)
		if f.FileInfo().IsDir() || !rawFiles[name] {
			continue
		}
		if got[name] {
			return nil, fmt.Errorf("bundle has more than one %s", name)
		}
		if err := unpackFile(f, filepath.Join(rawDir, name)); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		got[name] = true
	}
	return got, nil
}

func unpackFile(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	tmp := dst + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
