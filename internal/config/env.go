package config

import (
	"errors"
	"io/fs"
	"strconv"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/joho/godotenv"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error; variables already set are never overwritten.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// ApplyEnvOverrides copies secrets and endpoints from the environment into cfg.
func ApplyEnvOverrides(cfg *GlobalConfig, lookup LookupFunc) error {
	strOverrides := map[string]*string{
		"PORTAL_URL":          &cfg.PortalConfig.URL,
		"PORTAL_USERNAME":     &cfg.PortalConfig.Username,
		"PORTAL_PASSWORD":     &cfg.PortalConfig.Password,
		"UPLOAD_API_URL":      &cfg.UploadConfig.APIURL,
		"DB_HOST":             &cfg.ReportConfig.DBHost,
		"DB_USER":             &cfg.ReportConfig.DBUser,
		"DB_PASS":             &cfg.ReportConfig.DBPassword,
		"DB_NAME":             &cfg.ReportConfig.DBName,
		"DISCORD_WEBHOOK_URL": &cfg.NotificationConfig.DiscordWebhookURL,
		"GCS_BUCKET":          &cfg.ArchiveConfig.Bucket,
	}
	for key, target := range strOverrides {
		if v, ok := lookup(key); ok && v != "" {
			*target = v
		}
	}

	if v, ok := lookup("DB_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return common.NewValidationError("DB_PORT", v, "must be an integer")
		}
		cfg.ReportConfig.DBPort = port
	}

	return nil
}
