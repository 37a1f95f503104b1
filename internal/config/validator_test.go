package config

import (
	"testing"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfig_Rules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *GlobalConfig)
		wantErr string
	}{
		{
			name:    "unknown mode",
			mutate:  func(cfg *GlobalConfig) { cfg.Mode = "automated" },
			wantErr: "rule 'mode'",
		},
		{
			name:    "bad log level",
			mutate:  func(cfg *GlobalConfig) { cfg.LogConfig.LogLevel = "loud" },
			wantErr: "rule 'loglevel'",
		},
		{
			name:    "negative retries",
			mutate:  func(cfg *GlobalConfig) { cfg.UploadConfig.MaxRetries = -1 },
			wantErr: "MaxRetries",
		},
		{
			name:    "malformed pattern",
			mutate:  func(cfg *GlobalConfig) { cfg.DownloadConfig.Targets[0].Patterns = []string{"Report[.csv"} },
			wantErr: "rule 'globpattern'",
		},
		{
			name:    "target without patterns",
			mutate:  func(cfg *GlobalConfig) { cfg.DownloadConfig.Targets[0].Patterns = nil },
			wantErr: "Patterns",
		},
		{
			name: "duplicate target ids",
			mutate: func(cfg *GlobalConfig) {
				cfg.DownloadConfig.Targets = append(cfg.DownloadConfig.Targets, models.DownloadTarget{
					ID: "auto_fix", EntryButtonID: "x", Patterns: []string{"x*"}, Rename: "other",
				})
			},
			wantErr: "duplicate download target id 'auto_fix'",
		},
		{
			name:    "archive enabled without bucket",
			mutate:  func(cfg *GlobalConfig) { cfg.ArchiveConfig.Enabled = true },
			wantErr: "Bucket",
		},
		{
			name:    "invalid api url",
			mutate:  func(cfg *GlobalConfig) { cfg.UploadConfig.APIURL = "not a url" },
			wantErr: "APIURL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultGlobalConfig()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateForMode(t *testing.T) {
	cfg := NewDefaultGlobalConfig()

	err := ValidateForMode(cfg, ModeIngest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORTAL_URL")
	assert.Contains(t, err.Error(), "UPLOAD_API_URL")
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)

	cfg.UploadConfig.APIURL = "https://api.example.com/upload"
	assert.NoError(t, ValidateForMode(cfg, ModeProcess))
	assert.Error(t, ValidateForMode(cfg, ModeDownload))

	err = ValidateForMode(cfg, ModeReport)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST")
}

func TestIsValidMode(t *testing.T) {
	for _, m := range []string{"ingest", "download", "process", "upload", "report", "INGEST"} {
		assert.True(t, IsValidMode(m), m)
	}
	assert.False(t, IsValidMode("onetime"))
	assert.False(t, IsValidMode(""))
}
