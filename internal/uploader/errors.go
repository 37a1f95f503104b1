package uploader

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds returned by Upload. Match them with errors.Is.
var (
	ErrFileMissing              = errors.New("file missing")
	ErrFileEmpty                = errors.New("file empty")
	ErrValidationRejected       = errors.New("validation rejected")
	ErrAPIFatal                 = errors.New("api fatal error")
	ErrPersistentServer         = errors.New("persistent server error")
	ErrPersistentNetwork        = errors.New("persistent network failure")
	ErrMalformedSuccessResponse = errors.New("malformed success response")
)

// UploadError is the terminal error of an upload.
type UploadError struct {
	Kind       error
	Path       string
	StatusCode int
	Message    string
	// Body is the last response body, truncated.
	Body     string
	Attempts int
	Err      error
}

func (e *UploadError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Path != "" {
		fmt.Fprintf(&b, " for %s", e.Path)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Attempts > 0 {
		fmt.Fprintf(&b, " after %d attempt(s)", e.Attempts)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, ": %s", e.Body)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the kind and the underlying cause.
func (e *UploadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsRetryExhausted reports whether err means the upload gave up after retrying.
func IsRetryExhausted(err error) bool {
	return errors.Is(err, ErrPersistentServer) || errors.Is(err, ErrPersistentNetwork)
}
