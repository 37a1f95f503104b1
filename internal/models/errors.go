package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrDownloadTimeout marks a target whose download was not detected within its wait budget.
var ErrDownloadTimeout = errors.New("download timeout")

// DownloadTimeoutError carries the target and budget of a download that never showed up.
type DownloadTimeoutError struct {
	Target  string
	MaxWait time.Duration
	Polls   int
}

func (e *DownloadTimeoutError) Error() string {
	return fmt.Sprintf("no download detected for %s within %s (%d polls)", e.Target, e.MaxWait, e.Polls)
}

func (e *DownloadTimeoutError) Is(target error) bool {
	return target == ErrDownloadTimeout
}
