package models

import (
	"fmt"
	"strings"
	"time"
)

// ItemStatus is the final state of one batch item.
type ItemStatus string

const (
	ItemSucceeded ItemStatus = "SUCCEEDED"
	ItemFailed    ItemStatus = "FAILED"
	ItemSkipped   ItemStatus = "SKIPPED"
)

// RunStatus is the overall state of a run.
type RunStatus string

const (
	RunStarted   RunStatus = "STARTED"
	RunCompleted RunStatus = "COMPLETED"
	RunPartial   RunStatus = "PARTIAL_FAILURE"
	RunFailed    RunStatus = "FAILED"
	RunCancelled RunStatus = "CANCELLED"
)

// Pipeline stages an item can fail in.
const (
	StageDownload  = "download"
	StageNormalize = "normalize"
	StageUpload    = "upload"
	StageReport    = "report"
)

// ItemResult is the per-item line of a run summary.
type ItemResult struct {
	Target   string        `json:"target"`
	Stage    string        `json:"stage"`
	Status   ItemStatus    `json:"status"`
	FilePath string        `json:"file_path,omitempty"`
	Link     string        `json:"link,omitempty"`
	Records  int           `json:"records,omitempty"`
	Attempts int           `json:"attempts,omitempty"`
	Fallback bool          `json:"fallback,omitempty"`
	Error    string        `json:"error,omitempty"`
	Diff     *PriceDiff    `json:"diff,omitempty"`
	Duration time.Duration `json:"duration"`
}

// RunSummary aggregates a whole batch.
type RunSummary struct {
	RunID     string       `json:"run_id"`
	Mode      string       `json:"mode"`
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time"`
	Status    RunStatus    `json:"status"`
	Items     []ItemResult `json:"items"`
}

// NewRunSummary starts an empty summary.
func NewRunSummary(runID, mode string, start time.Time) *RunSummary {
	return &RunSummary{
		RunID:     runID,
		Mode:      mode,
		StartTime: start,
		Status:    RunStarted,
	}
}

// Add appends an item result.
func (s *RunSummary) Add(item ItemResult) {
	s.Items = append(s.Items, item)
}

// Succeeded counts successful items.
func (s *RunSummary) Succeeded() int { return s.count(ItemSucceeded) }

// Failed counts failed items.
func (s *RunSummary) Failed() int { return s.count(ItemFailed) }

func (s *RunSummary) count(status ItemStatus) int {
	n := 0
	for _, item := range s.Items {
		if item.Status == status {
			n++
		}
	}
	return n
}

// Finish stamps the end time and derives the run status from the items.
// A cancelled run stays cancelled.
func (s *RunSummary) Finish(end time.Time, cancelled bool) {
	s.EndTime = end
	switch {
	case cancelled:
		s.Status = RunCancelled
	case s.Failed() == 0:
		s.Status = RunCompleted
	case s.Succeeded() == 0:
		s.Status = RunFailed
	default:
		s.Status = RunPartial
	}
}

// Duration is the wall time of the run.
func (s *RunSummary) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// Text renders the itemized summary as plain lines.
func (s *RunSummary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s (%s): %s, %d succeeded, %d failed\n", s.RunID, s.Mode, s.Status, s.Succeeded(), s.Failed())
	for _, item := range s.Items {
		switch item.Status {
		case ItemSucceeded:
			detail := item.FilePath
			if item.Link != "" {
				detail = item.Link
			}
			fmt.Fprintf(&b, "  [OK]   %-14s %-9s %s\n", item.Target, item.Stage, detail)
		case ItemSkipped:
			fmt.Fprintf(&b, "  [SKIP] %-14s %-9s %s\n", item.Target, item.Stage, item.Error)
		default:
			fmt.Fprintf(&b, "  [FAIL] %-14s %-9s %s\n", item.Target, item.Stage, item.Error)
		}
	}
	return b.String()
}
