package models

import "time"

// AttemptOutcome is the verdict on one upload attempt.
type AttemptOutcome string

const (
	OutcomeSuccess   AttemptOutcome = "success"
	OutcomeRetryable AttemptOutcome = "retryable_failure"
	OutcomeFatal     AttemptOutcome = "fatal_failure"
)

// UploadAttempt records one try of an upload.
type UploadAttempt struct {
	Number     int            `json:"number"`
	Wait       time.Duration  `json:"wait"`
	Outcome    AttemptOutcome `json:"outcome"`
	StatusCode int            `json:"status_code,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// UploadResult is what a successful upload hands back.
type UploadResult struct {
	Link     string                 `json:"link"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
	Attempts []UploadAttempt        `json:"attempts"`
}
