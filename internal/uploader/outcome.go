package uploader

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/httpclient"
	"github.com/aleister1102/pricefeed/internal/models"
)

// missingColumnsMarker is how the API reports a price list without the required columns.
const missingColumnsMarker = "missing required columns"

// Outcome is the verdict on a single attempt. The retry driver acts on Kind alone.
type Outcome struct {
	Kind       models.AttemptOutcome
	Link       string
	Payload    map[string]interface{}
	StatusCode int
	Reason     string
	// Body is the truncated response body of a failed attempt.
	Body string
	// Err is the terminal error of a fatal outcome or the cause of a retryable one.
	Err error
}

func success(link string, payload map[string]interface{}) Outcome {
	return Outcome{Kind: models.OutcomeSuccess, Link: link, Payload: payload, StatusCode: http.StatusOK}
}

func retryable(status int, reason, body string, err error) Outcome {
	return Outcome{Kind: models.OutcomeRetryable, StatusCode: status, Reason: reason, Body: body, Err: err}
}

func fatal(status int, reason string, err error) Outcome {
	return Outcome{Kind: models.OutcomeFatal, StatusCode: status, Reason: reason, Err: err}
}

// ClassifyResponse decides the outcome of an attempt that got an HTTP response.
func ClassifyResponse(resp *httpclient.Response, bodyLimit int) Outcome {
	body := common.TruncateText(string(resp.Body), bodyLimit)

	switch {
	case resp.StatusCode == http.StatusOK:
		return classifySuccess(resp.Body, body)

	case resp.StatusCode == http.StatusBadRequest:
		msg := errorMessage(resp.Body)
		if strings.Contains(strings.ToLower(msg), missingColumnsMarker) {
			return fatal(resp.StatusCode, "validation rejected", &UploadError{
				Kind:       ErrValidationRejected,
				StatusCode: resp.StatusCode,
				Message:    "missing required columns (CODIGO, DESCRIPCION, MARCA, PRECIO)",
				Body:       common.TruncateText(msg, bodyLimit),
			})
		}
		return fatal(resp.StatusCode, "bad request", &UploadError{
			Kind:       ErrAPIFatal,
			StatusCode: resp.StatusCode,
			Message:    common.TruncateText(msg, bodyLimit),
		})

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return retryable(resp.StatusCode, fmt.Sprintf("status %d", resp.StatusCode), body, nil)

	default:
		return fatal(resp.StatusCode, fmt.Sprintf("status %d", resp.StatusCode), &UploadError{
			Kind:       ErrAPIFatal,
			StatusCode: resp.StatusCode,
			Body:       body,
		})
	}
}

func classifySuccess(raw []byte, truncated string) Outcome {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fatal(http.StatusOK, "unparseable success body", &UploadError{
			Kind:       ErrMalformedSuccessResponse,
			StatusCode: http.StatusOK,
			Message:    "response is not a JSON object",
			Body:       truncated,
			Err:        err,
		})
	}
	value, ok := payload["link"]
	if !ok || value == nil {
		return fatal(http.StatusOK, "missing link", &UploadError{
			Kind:       ErrMalformedSuccessResponse,
			StatusCode: http.StatusOK,
			Message:    "response has no 'link' field",
			Body:       truncated,
		})
	}
	return success(fmt.Sprint(value), payload)
}

// errorMessage pulls "message" or "detail" out of a JSON error body, or returns the body as text.
func errorMessage(raw []byte) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return strings.TrimSpace(string(raw))
	}
	for _, key := range []string{"message", "detail"} {
		switch v := payload[key].(type) {
		case nil:
		case string:
			if v != "" {
				return v
			}
		default:
			if encoded, err := json.Marshal(v); err == nil {
				return string(encoded)
			}
		}
	}
	return strings.TrimSpace(string(raw))
}

// ClassifyTransportError decides the outcome of an attempt that got no HTTP response.
func ClassifyTransportError(err error) Outcome {
	if httpclient.IsRetryableNetworkError(err) {
		return retryable(0, "network error", "", err)
	}
	return fatal(0, "transport error", common.WrapError(err, "upload request failed"))
}
