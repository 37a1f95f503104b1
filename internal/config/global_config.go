package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/logger"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	Mode               string               `json:"mode,omitempty" yaml:"mode,omitempty" validate:"required,mode"`
	PortalConfig       PortalConfig         `json:"portal_config,omitempty" yaml:"portal_config,omitempty"`
	DownloadConfig     DownloadConfig       `json:"download_config,omitempty" yaml:"download_config,omitempty"`
	UploadConfig       UploadConfig         `json:"upload_config,omitempty" yaml:"upload_config,omitempty"`
	NormalizerConfig   NormalizerConfig     `json:"normalizer_config,omitempty" yaml:"normalizer_config,omitempty"`
	StorageConfig      StorageConfig        `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
	ReportConfig       ReportConfig         `json:"report_config,omitempty" yaml:"report_config,omitempty"`
	NotificationConfig NotificationConfig   `json:"notification_config,omitempty" yaml:"notification_config,omitempty"`
	ArchiveConfig      ArchiveConfig        `json:"archive_config,omitempty" yaml:"archive_config,omitempty"`
	LogConfig          logger.FileLogConfig `json:"log_config,omitempty" yaml:"log_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Mode:               ModeIngest,
		PortalConfig:       NewDefaultPortalConfig(),
		DownloadConfig:     NewDefaultDownloadConfig(),
		UploadConfig:       NewDefaultUploadConfig(),
		NormalizerConfig:   NewDefaultNormalizerConfig(),
		StorageConfig:      NewDefaultStorageConfig(),
		ReportConfig:       NewDefaultReportConfig(),
		NotificationConfig: NewDefaultNotificationConfig(),
		ArchiveConfig:      NewDefaultArchiveConfig(),
		LogConfig:          logger.NewDefaultFileLogConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations, then
// layers the .env file and environment variables on top.
// YAML is preferred if the file extension is .yaml or .yml.
func LoadGlobalConfig(providedPath string, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()
	fileManager := common.NewFileManager(logger)

	if providedPath != "" && !fileManager.FileExists(providedPath) {
		return nil, common.NewValidationError("config_file", providedPath, "config file does not exist")
	}

	if filePath := GetConfigPath(providedPath); filePath != "" {
		data, err := loadConfigFileContent(fileManager, filePath)
		if err != nil {
			return nil, common.WrapError(err, "failed to load config file content")
		}
		if err := parseConfigContent(data, filePath, cfg); err != nil {
			return nil, common.WrapError(err, "failed to parse config content")
		}
		logger.Debug().Str("path", filePath).Msg("Loaded configuration file")
	}

	if err := LoadEnvFile(DefaultEnvFile); err != nil {
		return nil, common.WrapError(err, "failed to load .env file")
	}
	if err := ApplyEnvOverrides(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadConfigFileContent reads the config file using FileManager
func loadConfigFileContent(fileManager *common.FileManager, filePath string) ([]byte, error) {
	opts := common.DefaultFileReadOptions()
	opts.MaxSize = 10 * 1024 * 1024
	return fileManager.ReadFile(filePath, opts)
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	if isYAMLFile(filepath.Ext(filePath)) {
		return parseYAMLConfig(data, filePath, cfg)
	}
	return parseJSONConfig(data, filePath, cfg)
}

func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

func parseYAMLConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
	}
	return nil
}

func parseJSONConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}
