package uploader

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aleister1102/pricefeed/internal/httpclient"
	"github.com/aleister1102/pricefeed/internal/models"
	"github.com/rs/zerolog"
)

// XLSXContentType is the content type of every uploaded price list.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FormField is the multipart field carrying the file.
const FormField = "file"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Uploader posts normalized price lists to the upload API, retrying transient failures.
type Uploader struct {
	apiURL    string
	bodyLimit int
	client    *httpclient.HTTPClient
	retry     *httpclient.RetryHandler
	logger    zerolog.Logger
}

// Upload sends the file at path and returns the link the API assigned to it.
// The result is never nil and lists every attempt made, also on failure.
func (u *Uploader) Upload(ctx context.Context, path string) (*models.UploadResult, error) {
	result := &models.UploadResult{}
	logger := u.logger.With().Str("file", filepath.Base(path)).Logger()

	data, err := readUploadFile(path)
	if err != nil {
		logger.Error().Err(err).Msg("Upload precondition failed")
		return result, err
	}

	var wait time.Duration
	for attempt := 0; ; attempt++ {
		outcome := u.attempt(ctx, path, data)
		record := models.UploadAttempt{
			Number:     attempt,
			Wait:       wait,
			Outcome:    outcome.Kind,
			StatusCode: outcome.StatusCode,
		}
		if outcome.Err != nil {
			record.Error = outcome.Err.Error()
		} else if outcome.Kind != models.OutcomeSuccess {
			record.Error = outcome.Reason
		}
		result.Attempts = append(result.Attempts, record)

		logger.Debug().
			Int("attempt", attempt+1).
			Int("max_attempts", u.retry.MaxRetries()+1).
			Str("outcome", string(outcome.Kind)).
			Int("status_code", outcome.StatusCode).
			Msg("Upload attempt finished")

		switch outcome.Kind {
		case models.OutcomeSuccess:
			result.Link = outcome.Link
			result.Payload = outcome.Payload
			logger.Info().Str("link", outcome.Link).Int("attempts", attempt+1).Msg("Upload succeeded")
			return result, nil

		case models.OutcomeFatal:
			err := withPath(outcome.Err, path, attempt+1)
			logger.Error().Err(err).Int("attempts", attempt+1).Msg("Upload failed")
			return result, err
		}

		if !u.retry.CanRetry(attempt) {
			err := exhausted(outcome, path, attempt+1)
			logger.Error().Err(err).Msg("Upload retries exhausted")
			return result, err
		}

		wait, err = u.retry.WaitForRetry(ctx, attempt, outcome.Reason)
		if err != nil {
			return result, err
		}
	}
}

// attempt performs one POST and classifies what came back.
func (u *Uploader) attempt(ctx context.Context, path string, data []byte) Outcome {
	body, contentType, err := multipartBody(filepath.Base(path), data)
	if err != nil {
		return fatal(0, "build request", err)
	}

	req, err := http.NewRequest(http.MethodPost, u.apiURL, body)
	if err != nil {
		return fatal(0, "build request", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := u.client.Do(ctx, req)
	if err != nil {
		return ClassifyTransportError(err)
	}
	return ClassifyResponse(resp, u.bodyLimit)
}

func multipartBody(filename string, data []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+FormField+`"; filename="`+quoteEscaper.Replace(filename)+`"`)
	header.Set("Content-Type", XLSXContentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

// readUploadFile enforces the preconditions: an existing, regular, non-empty file.
func readUploadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &UploadError{Kind: ErrFileMissing, Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &UploadError{Kind: ErrFileMissing, Path: path, Message: "not a regular file"}
	}
	if info.Size() == 0 {
		return nil, &UploadError{Kind: ErrFileEmpty, Path: path}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &UploadError{Kind: ErrFileMissing, Path: path, Err: err}
	}
	if len(data) == 0 {
		return nil, &UploadError{Kind: ErrFileEmpty, Path: path}
	}
	return data, nil
}

func withPath(err error, path string, attempts int) error {
	if uerr, ok := err.(*UploadError); ok {
		uerr.Path = path
		uerr.Attempts = attempts
		return uerr
	}
	return err
}

func exhausted(last Outcome, path string, attempts int) error {
	if last.StatusCode != 0 {
		return &UploadError{
			Kind:       ErrPersistentServer,
			Path:       path,
			StatusCode: last.StatusCode,
			Body:       last.Body,
			Attempts:   attempts,
		}
	}
	return &UploadError{
		Kind:     ErrPersistentNetwork,
		Path:     path,
		Attempts: attempts,
		Err:      last.Err,
	}
}
