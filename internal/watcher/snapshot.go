package watcher

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/aleister1102/pricefeed/internal/models"
)

// CaptureSnapshot records the state of every candidate file in dir.
// A missing directory yields an empty snapshot.
func CaptureSnapshot(dir string) (models.DirectorySnapshot, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(absDir); errors.Is(err, fs.ErrNotExist) {
		return models.DirectorySnapshot{}, nil
	} else if err != nil {
		return nil, err
	}
	return scanDirectory(absDir), nil
}

// BuildBaseline stats each path. Paths that cannot be read get a zero state,
// so they count as changed if they show up later.
func BuildBaseline(paths []string) models.DirectorySnapshot {
	snapshot := make(models.DirectorySnapshot, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		info, err := os.Stat(abs)
		if err != nil {
			snapshot[abs] = models.FileState{}
			continue
		}
		snapshot[abs] = stateOf(info)
	}
	return snapshot
}

// scanDirectory lists the candidate regular files of dir. Per-file stat errors are skipped.
func scanDirectory(dir string) map[string]models.FileState {
	files := make(map[string]models.FileState)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return files
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if !IsResultCandidate(path) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files[path] = stateOf(info)
	}
	return files
}

func stateOf(info fs.FileInfo) models.FileState {
	return models.FileState{ModTime: info.ModTime(), Size: info.Size()}
}

// candidate is a file observed during a poll.
type candidate struct {
	path  string
	state models.FileState
}

// changedFiles returns the files that are new or modified relative to baseline,
// sorted by path.
func changedFiles(baseline models.DirectorySnapshot, current map[string]models.FileState) []candidate {
	var changed []candidate
	for path, state := range current {
		before, seen := baseline[path]
		if !seen || before.Changed(state) {
			changed = append(changed, candidate{path: path, state: state})
		}
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i].path < changed[j].path })
	return changed
}

// allFiles returns every current file sorted by path.
func allFiles(current map[string]models.FileState) []candidate {
	files := make([]candidate, 0, len(current))
	for path, state := range current {
		files = append(files, candidate{path: path, state: state})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	return files
}

// withoutReserved drops the files whose name belongs to another target.
func withoutReserved(files []candidate, reserved []string) []candidate {
	if len(reserved) == 0 {
		return files
	}
	kept := files[:0:0]
	for _, f := range files {
		if !IsReservedName(f.path, reserved) {
			kept = append(kept, f)
		}
	}
	return kept
}

// selectFile prefers the most recent pattern match, then the most recent file overall.
// Ties on modification time go to the lexically smallest path.
func selectFile(files []candidate, patterns []string) (path string, matched bool, ok bool) {
	var matches []candidate
	for _, f := range files {
		if MatchesKnownPattern(f.path, patterns) {
			matches = append(matches, f)
		}
	}
	if best, found := mostRecent(matches); found {
		return best.path, true, true
	}
	if best, found := mostRecent(files); found {
		return best.path, false, true
	}
	return "", false, false
}

func mostRecent(files []candidate) (candidate, bool) {
	if len(files) == 0 {
		return candidate{}, false
	}
	best := files[0]
	for _, f := range files[1:] {
		if f.state.ModTime.After(best.state.ModTime) ||
			(f.state.ModTime.Equal(best.state.ModTime) && f.path < best.path) {
			best = f
		}
	}
	return best, true
}
