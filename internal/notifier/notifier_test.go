package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aleister1102/pricefeed/internal/config"
	"github.com/aleister1102/pricefeed/internal/httpclient"
	"github.com/aleister1102/pricefeed/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func immediate(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

func sampleSummary(status models.ItemStatus) *models.RunSummary {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s := models.NewRunSummary("run-42", "ingest", start)
	s.Add(models.ItemResult{
		Target: "auto_express", Stage: models.StageUpload, Status: models.ItemSucceeded,
		Link: "https://files/express", Records: 120, Attempts: 2,
		Diff: &models.PriceDiff{HasPrevious: true, Added: 3, Removed: 1, Changed: 7},
	})
	s.Add(models.ItemResult{Target: "auto_fix", Stage: models.StageDownload, Status: status, Error: "no download detected"})
	s.Finish(start.Add(95*time.Second), false)
	return s
}

func newTestNotifier(t *testing.T, url string) *DiscordNotifier {
	t.Helper()
	dn, err := NewDiscordNotifier(url, nil, zerolog.Nop())
	require.NoError(t, err)
	dn.WithRetryHandler(httpclient.NewRetryHandler(httpclient.RetryHandlerConfig{MaxRetries: 2, BaseDelay: time.Millisecond}, zerolog.Nop()).WithAfter(immediate))
	return dn
}

func TestFormatRunSummary(t *testing.T) {
	cfg := config.NotificationConfig{MentionRoleIDs: []string{"123"}}

	payload := FormatRunSummary(sampleSummary(models.ItemFailed), cfg)
	require.Len(t, payload.Embeds, 1)
	embed := payload.Embeds[0]

	assert.Contains(t, embed.Title, "partially failed")
	assert.Equal(t, WarningEmbedColor, embed.Color)
	assert.Contains(t, embed.Description, "`run-42`")
	assert.Contains(t, embed.Description, "1m35s")
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "[OK] auto_express (upload)", embed.Fields[0].Name)
	assert.Contains(t, embed.Fields[0].Value, "https://files/express")
	assert.Contains(t, embed.Fields[0].Value, "+3 / -1 / ~7 prices")
	assert.Contains(t, embed.Fields[0].Value, "2 attempts")
	assert.Equal(t, "[FAIL] auto_fix (download)", embed.Fields[1].Name)
	assert.Equal(t, "no download detected", embed.Fields[1].Value)

	assert.Equal(t, "<@&123>", payload.Content)
	require.NotNil(t, payload.AllowedMentions)
	assert.Equal(t, []string{"123"}, payload.AllowedMentions.Roles)
	assert.NoError(t, ValidatePayload(payload))
}

func TestFormatRunSummary_SuccessHasNoMentions(t *testing.T) {
	payload := FormatRunSummary(sampleSummary(models.ItemSucceeded), config.NotificationConfig{MentionRoleIDs: []string{"123"}})
	assert.Empty(t, payload.Content)
	assert.Equal(t, SuccessEmbedColor, payload.Embeds[0].Color)
}

func TestFormatRunSummary_ManyItems(t *testing.T) {
	s := models.NewRunSummary("run", "ingest", time.Now())
	for i := 0; i < 40; i++ {
		s.Add(models.ItemResult{Target: "t", Stage: models.StageUpload, Status: models.ItemSucceeded})
	}
	s.Finish(time.Now(), false)

	payload := FormatRunSummary(s, config.NotificationConfig{})
	fields := payload.Embeds[0].Fields
	require.Len(t, fields, maxEmbedFields)
	assert.Equal(t, "16 more items", fields[maxEmbedFields-1].Value)
	assert.NoError(t, ValidatePayload(payload))
}

func TestFormatDiff(t *testing.T) {
	assert.Equal(t, "", FormatDiff(nil))
	assert.Equal(t, "first snapshot, 4 parts", FormatDiff(&models.PriceDiff{Added: 4}))
}

func TestValidatePayload(t *testing.T) {
	assert.Error(t, ValidatePayload(models.DiscordMessagePayload{}))
	assert.Error(t, ValidatePayload(models.DiscordMessagePayload{Content: strings.Repeat("x", 2001)}))
	assert.Error(t, ValidatePayload(models.DiscordMessagePayload{Embeds: []models.DiscordEmbed{{Title: strings.Repeat("t", 257)}}}))
	assert.Error(t, ValidatePayload(models.DiscordMessagePayload{Embeds: []models.DiscordEmbed{{Fields: []models.DiscordEmbedField{{Name: "n"}}}}}))
	assert.NoError(t, ValidatePayload(models.DiscordMessagePayload{Content: "hi"}))
}

func TestDiscordNotifier_SendJSON(t *testing.T) {
	var got models.DiscordMessagePayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	dn := newTestNotifier(t, server.URL)
	err := dn.SendNotification(context.Background(), models.DiscordMessagePayload{Content: "hello"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
}

func TestDiscordNotifier_SendAttachment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Contains(t, r.FormValue("payload_json"), `"content":"hello"`)
		file, header, err := r.FormFile("files[0]")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "run.json", header.Filename)
		assert.Equal(t, "{}", string(data))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dn := newTestNotifier(t, server.URL)
	err := dn.SendNotification(context.Background(), models.DiscordMessagePayload{Content: "hello"}, &Attachment{Name: "run.json", Data: []byte("{}")})
	assert.NoError(t, err)
}

func TestDiscordNotifier_RetriesRateLimit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := newTestNotifier(t, server.URL).SendNotification(context.Background(), models.DiscordMessagePayload{Content: "x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDiscordNotifier_BadRequestNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Invalid Form Body"}`))
	}))
	defer server.Close()

	err := newTestNotifier(t, server.URL).SendNotification(context.Background(), models.DiscordMessagePayload{Content: "x"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNewDiscordNotifier_InvalidURL(t *testing.T) {
	_, err := NewDiscordNotifier("not a url", nil, zerolog.Nop())
	assert.Error(t, err)
}

type recordingSender struct {
	payloads    []models.DiscordMessagePayload
	attachments []*Attachment
	err         error
}

func (r *recordingSender) SendNotification(_ context.Context, payload models.DiscordMessagePayload, attachment *Attachment) error {
	r.payloads = append(r.payloads, payload)
	r.attachments = append(r.attachments, attachment)
	return r.err
}

func TestNotificationHelper_SendRunSummary(t *testing.T) {
	t.Run("failure notified with attachment", func(t *testing.T) {
		sender := &recordingSender{}
		helper := NewNotificationHelper(sender, config.NotificationConfig{NotifyOnFailure: true, AttachSummary: true}, zerolog.Nop())

		helper.SendRunSummary(context.Background(), sampleSummary(models.ItemFailed))
		require.Len(t, sender.payloads, 1)
		require.NotNil(t, sender.attachments[0])
		assert.Equal(t, "run-run-42.json", sender.attachments[0].Name)
		assert.Contains(t, string(sender.attachments[0].Data), `"run_id": "run-42"`)
	})

	t.Run("success skipped by default", func(t *testing.T) {
		sender := &recordingSender{}
		helper := NewNotificationHelper(sender, config.NewDefaultNotificationConfig(), zerolog.Nop())
		helper.SendRunSummary(context.Background(), sampleSummary(models.ItemSucceeded))
		assert.Empty(t, sender.payloads)
	})

	t.Run("send errors are swallowed", func(t *testing.T) {
		sender := &recordingSender{err: errors.New("boom")}
		helper := NewNotificationHelper(sender, config.NotificationConfig{NotifyOnFailure: true}, zerolog.Nop())
		helper.SendRunSummary(context.Background(), sampleSummary(models.ItemFailed))
		assert.Len(t, sender.payloads, 1)
		assert.Nil(t, sender.attachments[0])
	})

	t.Run("nil sender", func(t *testing.T) {
		helper := NewNotificationHelper(nil, config.NotificationConfig{NotifyOnFailure: true}, zerolog.Nop())
		assert.NotPanics(t, func() { helper.SendRunSummary(context.Background(), sampleSummary(models.ItemFailed)) })
	})
}
