package models

import (
	"path/filepath"
	"time"
)

// Locator identifies a clickable element on a supplier portal page.
// CSS is required; when Text is set the element must also contain that text.
type Locator struct {
	CSS  string `json:"css" yaml:"css" validate:"required"`
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
}

// DownloadTarget describes one supplier price list that can be fetched from the portal.
// Targets are defined at startup and treated as read-only afterwards.
type DownloadTarget struct {
	ID               string    `json:"id" yaml:"id" validate:"required"`
	Name             string    `json:"name" yaml:"name"`
	EntryButtonID    string    `json:"entry_button_id" yaml:"entry_button_id" validate:"required"`
	RequiresLogin    bool      `json:"requires_login" yaml:"requires_login"`
	SelectCheckboxes bool      `json:"select_checkboxes" yaml:"select_checkboxes"`
	DownloadLocators []Locator `json:"download_locators,omitempty" yaml:"download_locators,omitempty" validate:"omitempty,dive"`
	Patterns         []string  `json:"patterns" yaml:"patterns" validate:"required,min=1,dive,globpattern"`
	Rename           string    `json:"rename" yaml:"rename" validate:"required"`
	MaxWaitSecs      int       `json:"max_wait_secs,omitempty" yaml:"max_wait_secs,omitempty" validate:"omitempty,min=1"`
}

// DisplayName returns Name, falling back to ID.
func (t DownloadTarget) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// TriggeredByEntryButton reports whether clicking the entry button starts the download itself.
func (t DownloadTarget) TriggeredByEntryButton() bool {
	return len(t.DownloadLocators) == 0
}

// RenamedPath returns where a downloaded file ends up once renamed after this target,
// keeping the downloaded file's extension.
func (t DownloadTarget) RenamedPath(downloaded string) string {
	return filepath.Join(filepath.Dir(downloaded), t.Rename+filepath.Ext(downloaded))
}

// MaxWait returns the per-target wait budget, or fallback when none is configured.
func (t DownloadTarget) MaxWait(fallback time.Duration) time.Duration {
	if t.MaxWaitSecs > 0 {
		return time.Duration(t.MaxWaitSecs) * time.Second
	}
	return fallback
}

// FileState is the comparison key the download watcher keeps per file.
type FileState struct {
	ModTime time.Time
	Size    int64
}

// Changed reports whether current differs from the baseline state.
// An older modification time counts too: downloads can keep the server's timestamp.
func (s FileState) Changed(current FileState) bool {
	return !current.ModTime.Equal(s.ModTime) || current.Size != s.Size
}

// DirectorySnapshot maps absolute paths to their state right before a download is triggered.
type DirectorySnapshot map[string]FileState

// Paths returns the snapshot's paths in no particular order.
func (s DirectorySnapshot) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	return paths
}

// WatchResult is the outcome of a single download watch.
// Found is false when nothing was detected within the wait budget.
type WatchResult struct {
	Path     string
	Found    bool
	Fallback bool
	Polls    int
	Elapsed  time.Duration
}

// NotFound builds a WatchResult for a watch that detected nothing.
func NotFound(polls int, elapsed time.Duration) WatchResult {
	return WatchResult{Polls: polls, Elapsed: elapsed}
}
