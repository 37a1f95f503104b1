package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/httpclient"
	"github.com/aleister1102/pricefeed/internal/models"
	"github.com/rs/zerolog"
)

const (
	defaultRetryAttempts = 2
	defaultRetryDelay    = 2 * time.Second
	defaultSendTimeout   = 20 * time.Second
	maxAttachmentSize    = 8 * 1024 * 1024
)

// Attachment is an in-memory file sent alongside a webhook message.
type Attachment struct {
	Name string
	Data []byte
}

// DiscordNotifier posts messages to a Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *httpclient.HTTPClient
	retry      *httpclient.RetryHandler
	logger     zerolog.Logger
}

// NewDiscordNotifier validates the webhook URL and prepares the client.
func NewDiscordNotifier(webhookURL string, client *httpclient.HTTPClient, logger zerolog.Logger) (*DiscordNotifier, error) {
	logger = logger.With().Str("component", "DiscordNotifier").Logger()

	if _, err := url.ParseRequestURI(webhookURL); err != nil {
		return nil, common.NewValidationError("discord_webhook_url", webhookURL, "invalid webhook URL")
	}

	if client == nil {
		var err error
		client, err = httpclient.NewHTTPClientBuilder(logger).
			WithConnectTimeout(10 * time.Second).
			WithReadTimeout(defaultSendTimeout).
			Build()
		if err != nil {
			return nil, err
		}
	}

	return &DiscordNotifier{
		webhookURL: webhookURL,
		client:     client,
		retry: httpclient.NewRetryHandler(httpclient.RetryHandlerConfig{
			MaxRetries: defaultRetryAttempts,
			BaseDelay:  defaultRetryDelay,
		}, logger),
		logger: logger,
	}, nil
}

// WithRetryHandler replaces the retry policy.
func (dn *DiscordNotifier) WithRetryHandler(retry *httpclient.RetryHandler) *DiscordNotifier {
	dn.retry = retry
	return dn
}

// SendNotification posts the payload, attaching the file when one is given.
// Rate limits and server errors are retried.
func (dn *DiscordNotifier) SendNotification(ctx context.Context, payload models.DiscordMessagePayload, attachment *Attachment) error {
	if err := ValidatePayload(payload); err != nil {
		return err
	}
	if attachment != nil && len(attachment.Data) > maxAttachmentSize {
		dn.logger.Warn().Str("file", attachment.Name).Int("size", len(attachment.Data)).Msg("Attachment too large, sending without it")
		attachment = nil
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal discord payload: %w", err)
	}

	for attempt := 0; ; attempt++ {
		req, err := dn.buildRequest(ctx, payloadJSON, attachment)
		if err != nil {
			return err
		}

		resp, err := dn.client.Do(ctx, req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			dn.logger.Info().Int("status_code", resp.StatusCode).Msg("Discord notification sent")
			return nil
		}

		var sendErr error
		retryable := false
		if err != nil {
			sendErr = fmt.Errorf("failed to send discord notification: %w", err)
			retryable = httpclient.IsRetryableNetworkError(err)
		} else {
			sendErr = fmt.Errorf("discord notification failed with status %d: %s", resp.StatusCode, common.TruncateText(string(resp.Body), 200))
			retryable = resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		}

		if !retryable || !dn.retry.CanRetry(attempt) {
			dn.logger.Error().Err(sendErr).Int("attempts", attempt+1).Msg("Discord notification failed")
			return sendErr
		}
		if _, err := dn.retry.WaitForRetry(ctx, attempt, sendErr.Error()); err != nil {
			return err
		}
	}
}

func (dn *DiscordNotifier) buildRequest(ctx context.Context, payloadJSON []byte, attachment *Attachment) (*http.Request, error) {
	if attachment == nil {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, dn.webhookURL, bytes.NewReader(payloadJSON))
		if err != nil {
			return nil, fmt.Errorf("failed to create discord request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("payload_json", string(payloadJSON)); err != nil {
		return nil, fmt.Errorf("failed to write payload_json to multipart: %w", err)
	}
	part, err := writer.CreateFormFile("files[0]", attachment.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(attachment.Data); err != nil {
		return nil, fmt.Errorf("failed to copy file data to form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dn.webhookURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}
