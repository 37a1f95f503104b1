package datastore

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	snapshotDataDir  = "snapshots"
	snapshotFileName = "data.parquet"
	// sessionLayout names the per-run directory of a snapshot.
	sessionLayout = "20060102-150405"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// SanitizeName makes a supplier name safe to use as a directory name.
func SanitizeName(name string) string {
	cleaned := unsafeNameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	return strings.Trim(cleaned, "._")
}

// supplierDir is <base>/snapshots/<supplier>.
func supplierDir(basePath, supplier string) string {
	return filepath.Join(basePath, snapshotDataDir, SanitizeName(supplier))
}

// snapshotPath is <base>/snapshots/<supplier>/<YYYYMMDD-HHMMSS>/data.parquet.
func snapshotPath(basePath, supplier string, capturedAt time.Time) string {
	return filepath.Join(supplierDir(basePath, supplier), capturedAt.UTC().Format(sessionLayout), snapshotFileName)
}
