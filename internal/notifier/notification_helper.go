package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aleister1102/pricefeed/internal/config"
	"github.com/aleister1102/pricefeed/internal/models"
	"github.com/rs/zerolog"
)

// Sender delivers a webhook message.
type Sender interface {
	SendNotification(ctx context.Context, payload models.DiscordMessagePayload, attachment *Attachment) error
}

// NotificationHelper decides whether a finished run is worth a message and sends it.
type NotificationHelper struct {
	sender Sender
	cfg    config.NotificationConfig
	logger zerolog.Logger
}

// NewNotificationHelper creates a new NotificationHelper. A nil sender disables notifications.
func NewNotificationHelper(sender Sender, cfg config.NotificationConfig, logger zerolog.Logger) *NotificationHelper {
	return &NotificationHelper{
		sender: sender,
		cfg:    cfg,
		logger: logger.With().Str("component", "NotificationHelper").Logger(),
	}
}

// ShouldNotify applies the success/failure switches to a run status.
func (nh *NotificationHelper) ShouldNotify(status models.RunStatus) bool {
	switch status {
	case models.RunCompleted:
		return nh.cfg.NotifyOnSuccess
	case models.RunPartial, models.RunFailed, models.RunCancelled:
		return nh.cfg.NotifyOnFailure
	default:
		return false
	}
}

// SendRunSummary notifies about a finished run. Failures are logged, never returned,
// so a broken webhook cannot fail the run.
func (nh *NotificationHelper) SendRunSummary(ctx context.Context, summary *models.RunSummary) {
	if nh.sender == nil {
		nh.logger.Debug().Msg("Notifier not configured, skipping")
		return
	}
	if !nh.ShouldNotify(summary.Status) {
		nh.logger.Debug().Str("status", string(summary.Status)).Msg("Notification for this run status is disabled, skipping")
		return
	}

	payload := FormatRunSummary(summary, nh.cfg)

	var attachment *Attachment
	if nh.cfg.AttachSummary {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			nh.logger.Warn().Err(err).Msg("Could not encode run summary attachment")
		} else {
			attachment = &Attachment{Name: fmt.Sprintf("run-%s.json", summary.RunID), Data: data}
		}
	}

	// The run context may already be cancelled when the run was interrupted.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if err := nh.sender.SendNotification(sendCtx, payload, attachment); err != nil {
		nh.logger.Error().Err(err).Str("run_id", summary.RunID).Msg("Failed to send run notification")
		return
	}
	nh.logger.Info().Str("run_id", summary.RunID).Str("status", string(summary.Status)).Msg("Run notification sent")
}
