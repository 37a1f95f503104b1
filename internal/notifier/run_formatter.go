package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/config"
	"github.com/aleister1102/pricefeed/internal/models"
)

func buildMentions(roleIDs []string) string {
	if len(roleIDs) == 0 {
		return ""
	}
	mentions := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		mentions = append(mentions, fmt.Sprintf("<@&%s>", id))
	}
	return strings.Join(mentions, " ")
}

func statusPresentation(status models.RunStatus) (string, int) {
	switch status {
	case models.RunCompleted:
		return ":white_check_mark: Price feed run completed", SuccessEmbedColor
	case models.RunPartial:
		return ":warning: Price feed run partially failed", WarningEmbedColor
	case models.RunCancelled:
		return ":stop_sign: Price feed run cancelled", WarningEmbedColor
	case models.RunFailed:
		return ":x: Price feed run failed", ErrorEmbedColor
	default:
		return ":information_source: Price feed run " + strings.ToLower(string(status)), InfoEmbedColor
	}
}

// FormatDiff renders a price diff as a single line.
func FormatDiff(diff *models.PriceDiff) string {
	if diff == nil {
		return ""
	}
	if !diff.HasPrevious {
		return fmt.Sprintf("first snapshot, %d parts", diff.Added)
	}
	return fmt.Sprintf("+%d / -%d / ~%d prices", diff.Added, diff.Removed, diff.Changed)
}

func itemFieldValue(item models.ItemResult) string {
	var lines []string
	switch item.Status {
	case models.ItemSucceeded:
		if item.Link != "" {
			lines = append(lines, item.Link)
		} else if item.FilePath != "" {
			lines = append(lines, "`"+item.FilePath+"`")
		}
		if item.Records > 0 {
			lines = append(lines, fmt.Sprintf("%d records", item.Records))
		}
		if d := FormatDiff(item.Diff); d != "" {
			lines = append(lines, d)
		}
		if item.Fallback {
			lines = append(lines, "picked by fallback")
		}
	default:
		lines = append(lines, common.TruncateText(item.Error, MaxItemErrorLength))
	}
	if item.Attempts > 1 {
		lines = append(lines, fmt.Sprintf("%d attempts", item.Attempts))
	}
	value := strings.Join(lines, "\n")
	if value == "" {
		value = "-"
	}
	return common.TruncateText(value, maxFieldValueLength-3)
}

// FormatRunSummary builds the webhook message for a finished run.
// Role mentions are only added when something failed.
func FormatRunSummary(summary *models.RunSummary, cfg config.NotificationConfig) models.DiscordMessagePayload {
	title, color := statusPresentation(summary.Status)

	description := fmt.Sprintf("**Run ID**: `%s`\n**Mode**: %s\n**Duration**: %s\n**Succeeded**: %d\n**Failed**: %d",
		summary.RunID, summary.Mode, summary.Duration().Round(time.Second), summary.Succeeded(), summary.Failed())

	embed := NewDiscordEmbedBuilder().
		WithTitle(title).
		WithDescription(description).
		WithColor(color).
		WithTimestamp(summary.EndTime).
		WithFooter(DiscordUsername)

	for i, item := range summary.Items {
		if i == maxEmbedFields-1 && len(summary.Items) > maxEmbedFields {
			embed.AddField("...", fmt.Sprintf("%d more items", len(summary.Items)-i), false)
			break
		}
		marker := "OK"
		switch item.Status {
		case models.ItemFailed:
			marker = "FAIL"
		case models.ItemSkipped:
			marker = "SKIP"
		}
		embed.AddField(fmt.Sprintf("[%s] %s (%s)", marker, item.Target, item.Stage), itemFieldValue(item), false)
	}

	builder := NewDiscordMessagePayloadBuilder().
		WithUsername(DiscordUsername).
		AddEmbed(embed.Build())

	if summary.Status != models.RunCompleted {
		if mentions := buildMentions(cfg.MentionRoleIDs); mentions != "" {
			builder.WithContent(mentions).WithRoleMentions(cfg.MentionRoleIDs)
		}
	}
	return builder.Build()
}
