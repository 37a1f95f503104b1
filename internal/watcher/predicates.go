package watcher

import (
	"path/filepath"
	"strings"
)

// ScreenshotPrefix marks diagnostic screenshots saved next to downloads.
const ScreenshotPrefix = "screenshot"

// partialSuffixes are the names browsers give downloads that are still in flight.
var partialSuffixes = []string{".tmp", ".crdownload", ".part"}

// IsResultCandidate reports whether the file at path could be a finished download.
// Hidden files, partial downloads and screenshots are never candidates.
func IsResultCandidate(path string) bool {
	name := filepath.Base(path)
	if name == "" || name == "." || strings.HasPrefix(name, ".") {
		return false
	}

	lower := strings.ToLower(name)
	for _, suffix := range partialSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return false
		}
	}
	return !strings.HasPrefix(lower, ScreenshotPrefix)
}

// MatchesKnownPattern reports whether the base name of name matches any of the
// glob patterns, ignoring case. Malformed patterns never match.
func MatchesKnownPattern(name string, patterns []string) bool {
	base := strings.ToLower(filepath.Base(name))
	for _, pattern := range patterns {
		if ok, err := filepath.Match(strings.ToLower(pattern), base); err == nil && ok {
			return true
		}
	}
	return false
}

// IsReservedName reports whether the base name of path, without extension,
// equals one of the reserved stems, ignoring case.
func IsReservedName(path string, stems []string) bool {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	for _, s := range stems {
		if s != "" && strings.EqualFold(stem, s) {
			return true
		}
	}
	return false
}
