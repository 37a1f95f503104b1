package models

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunSummary_Finish(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		items     []ItemStatus
		cancelled bool
		want      RunStatus
	}{
		{"all succeeded", []ItemStatus{ItemSucceeded, ItemSucceeded}, false, RunCompleted},
		{"empty run", nil, false, RunCompleted},
		{"mixed", []ItemStatus{ItemSucceeded, ItemFailed}, false, RunPartial},
		{"all failed", []ItemStatus{ItemFailed, ItemFailed}, false, RunFailed},
		{"skipped does not count as failure", []ItemStatus{ItemSucceeded, ItemSkipped}, false, RunCompleted},
		{"cancelled wins", []ItemStatus{ItemSucceeded}, true, RunCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewRunSummary("run-1", "ingest", start)
			for i, status := range tt.items {
				s.Add(ItemResult{Target: fmt.Sprintf("t%d", i), Stage: StageUpload, Status: status})
			}
			s.Finish(start.Add(90*time.Second), tt.cancelled)
			assert.Equal(t, tt.want, s.Status)
			assert.Equal(t, 90*time.Second, s.Duration())
		})
	}
}

func TestRunSummary_Text(t *testing.T) {
	s := NewRunSummary("run-2", "ingest", time.Now())
	s.Add(ItemResult{Target: "auto_express", Stage: StageUpload, Status: ItemSucceeded, Link: "https://files/express"})
	s.Add(ItemResult{Target: "auto_fix", Stage: StageDownload, Status: ItemFailed, Error: "no download detected"})
	s.Finish(time.Now(), false)

	text := s.Text()
	assert.Contains(t, text, "run run-2 (ingest): PARTIAL_FAILURE, 1 succeeded, 1 failed")
	assert.Contains(t, text, "[OK]   auto_express")
	assert.Contains(t, text, "https://files/express")
	assert.Contains(t, text, "[FAIL] auto_fix")
	assert.Contains(t, text, "no download detected")
}

func TestDownloadTarget_Helpers(t *testing.T) {
	target := DownloadTarget{ID: "auto_fix", Rename: "autofix", MaxWaitSecs: 60}

	assert.Equal(t, "auto_fix", target.DisplayName())
	assert.True(t, target.TriggeredByEntryButton())
	assert.Equal(t, "/downloads/autofix.xlsx", target.RenamedPath("/downloads/AutoFix 2024-05.xlsx"))
	assert.Equal(t, 60*time.Second, target.MaxWait(120*time.Second))

	target.MaxWaitSecs = 0
	target.Name = "Auto Fix"
	target.DownloadLocators = []Locator{{CSS: "button", Text: "Descargar"}}
	assert.Equal(t, 120*time.Second, target.MaxWait(120*time.Second))
	assert.Equal(t, "Auto Fix", target.DisplayName())
	assert.False(t, target.TriggeredByEntryButton())
}

func TestFileState_Changed(t *testing.T) {
	base := FileState{ModTime: time.Unix(100, 0), Size: 10}

	assert.False(t, base.Changed(base))
	assert.True(t, base.Changed(FileState{ModTime: time.Unix(101, 0), Size: 10}))
	assert.True(t, base.Changed(FileState{ModTime: time.Unix(100, 0), Size: 11}))
	assert.True(t, base.Changed(FileState{ModTime: time.Unix(40, 0), Size: 10}), "older mtime is a change")
	assert.True(t, FileState{}.Changed(base), "zero baseline treats any readable file as changed")
}

func TestDownloadTimeoutError(t *testing.T) {
	err := fmt.Errorf("download stage: %w", &DownloadTimeoutError{Target: "auto_fix", MaxWait: time.Minute, Polls: 12})

	assert.True(t, errors.Is(err, ErrDownloadTimeout))
	assert.Contains(t, err.Error(), "auto_fix")
	assert.Contains(t, err.Error(), "1m0s")
}
