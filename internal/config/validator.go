package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/logger"
	"github.com/go-playground/validator/v10"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	validate := newValidator()

	if err := validate.Struct(cfg); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			return formatValidationErrors(errs)
		}
		return fmt.Errorf("configuration validation error: %w", err)
	}

	return validateTargets(cfg.DownloadConfig)
}

// ValidateForMode checks the settings a given run mode cannot work without.
func ValidateForMode(cfg *GlobalConfig, mode string) error {
	var missing []string
	needsPortal := mode == ModeIngest || mode == ModeDownload
	needsUpload := mode == ModeIngest || mode == ModeProcess || mode == ModeUpload

	if needsPortal && cfg.PortalConfig.URL == "" {
		missing = append(missing, "portal_config.url (PORTAL_URL)")
	}
	if needsUpload && cfg.UploadConfig.APIURL == "" {
		missing = append(missing, "upload_config.api_url (UPLOAD_API_URL)")
	}
	if mode == ModeReport {
		if cfg.ReportConfig.DBHost == "" {
			missing = append(missing, "report_config.db_host (DB_HOST)")
		}
		if cfg.ReportConfig.DBName == "" {
			missing = append(missing, "report_config.db_name (DB_NAME)")
		}
	}

	if len(missing) > 0 {
		return common.NewConfigurationError(mode, "", "mode requires "+strings.Join(missing, ", "))
	}
	return nil
}

func newValidator() *validator.Validate {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		return logger.ValidLevel(fl.Field().String())
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		return logger.ValidFormat(fl.Field().String())
	})

	_ = validate.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
		return IsValidMode(fl.Field().String())
	})

	// Patterns are matched case-insensitively against base names.
	_ = validate.RegisterValidation("globpattern", func(fl validator.FieldLevel) bool {
		pattern := fl.Field().String()
		if pattern == "" {
			return false
		}
		_, err := filepath.Match(strings.ToLower(pattern), "")
		return err == nil
	})

	return validate
}

// IsValidMode reports whether mode names a supported run mode.
func IsValidMode(mode string) bool {
	switch strings.ToLower(mode) {
	case ModeIngest, ModeDownload, ModeProcess, ModeUpload, ModeReport:
		return true
	default:
		return false
	}
}

func validateTargets(cfg DownloadConfig) error {
	seenIDs := make(map[string]bool)
	seenRenames := make(map[string]bool)
	for _, t := range cfg.Targets {
		if seenIDs[t.ID] {
			return fmt.Errorf("configuration validation failed: duplicate download target id '%s'", t.ID)
		}
		if seenRenames[t.Rename] {
			return fmt.Errorf("configuration validation failed: duplicate rename '%s' (target '%s')", t.Rename, t.ID)
		}
		seenIDs[t.ID] = true
		seenRenames[t.Rename] = true
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	var messages []string
	for _, e := range errs {
		msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", e.Namespace(), e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		messages = append(messages, msg)
	}
	return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(messages, "\n  "))
}
