package notifier

import (
	"fmt"
	"unicode/utf8"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/models"
)

// ValidateEmbed checks an embed against Discord's limits.
func ValidateEmbed(embed models.DiscordEmbed) error {
	if utf8.RuneCountInString(embed.Title) > maxEmbedTitleLength {
		return common.NewValidationError("title", embed.Title, "title cannot exceed 256 characters")
	}
	if utf8.RuneCountInString(embed.Description) > maxEmbedDescriptionLength {
		return common.NewValidationError("description", embed.Description, "description cannot exceed 4096 characters")
	}
	if len(embed.Fields) > maxEmbedFields {
		return common.NewValidationError("fields", len(embed.Fields), "cannot have more than 25 fields")
	}

	for i, field := range embed.Fields {
		if field.Name == "" {
			return common.NewValidationError("field_name", field.Name, fmt.Sprintf("field %d name cannot be empty", i))
		}
		if field.Value == "" {
			return common.NewValidationError("field_value", field.Value, fmt.Sprintf("field %d value cannot be empty", i))
		}
		if utf8.RuneCountInString(field.Name) > maxFieldNameLength {
			return common.NewValidationError("field_name", field.Name, fmt.Sprintf("field %d name cannot exceed 256 characters", i))
		}
		if utf8.RuneCountInString(field.Value) > maxFieldValueLength {
			return common.NewValidationError("field_value", field.Value, fmt.Sprintf("field %d value cannot exceed 1024 characters", i))
		}
	}

	if embed.Footer != nil && utf8.RuneCountInString(embed.Footer.Text) > maxFooterTextLength {
		return common.NewValidationError("footer_text", embed.Footer.Text, "footer text cannot exceed 2048 characters")
	}
	return nil
}

// ValidatePayload checks the message and each of its embeds.
func ValidatePayload(payload models.DiscordMessagePayload) error {
	if payload.Content == "" && len(payload.Embeds) == 0 {
		return common.NewValidationError("payload", payload, "message needs content or at least one embed")
	}
	if utf8.RuneCountInString(payload.Content) > maxContentLength {
		return common.NewValidationError("content", payload.Content, "content cannot exceed 2000 characters")
	}
	if len(payload.Embeds) > maxEmbedsPerMessage {
		return common.NewValidationError("embeds", len(payload.Embeds), "cannot have more than 10 embeds")
	}
	for i, embed := range payload.Embeds {
		if err := ValidateEmbed(embed); err != nil {
			return common.WrapErrorf(err, "embed %d", i)
		}
	}
	return nil
}
