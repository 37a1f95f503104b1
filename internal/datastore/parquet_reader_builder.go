package datastore

import (
	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/config"
	"github.com/rs/zerolog"
)

// ParquetReaderBuilder provides a fluent interface for creating ParquetReader
type ParquetReaderBuilder struct {
	storageConfig *config.StorageConfig
	logger        zerolog.Logger
}

// NewParquetReaderBuilder creates a new ParquetReaderBuilder
func NewParquetReaderBuilder(logger zerolog.Logger) *ParquetReaderBuilder {
	return &ParquetReaderBuilder{
		logger: logger.With().Str("component", "ParquetReader").Logger(),
	}
}

// WithStorageConfig sets the storage configuration
func (b *ParquetReaderBuilder) WithStorageConfig(cfg *config.StorageConfig) *ParquetReaderBuilder {
	b.storageConfig = cfg
	return b
}

// Build creates a new ParquetReader instance
func (b *ParquetReaderBuilder) Build() (*ParquetReader, error) {
	if b.storageConfig == nil {
		return nil, common.NewValidationError("storage_config", b.storageConfig, "storage config cannot be nil")
	}
	if b.storageConfig.ParquetBasePath == "" {
		return nil, common.NewValidationError("parquet_base_path", b.storageConfig.ParquetBasePath, "ParquetBasePath is not configured")
	}

	return &ParquetReader{
		storageConfig: b.storageConfig,
		logger:        b.logger,
		fileManager:   common.NewFileManager(b.logger),
	}, nil
}

// NewParquetReader creates a new ParquetReader using builder pattern
func NewParquetReader(cfg *config.StorageConfig, logger zerolog.Logger) (*ParquetReader, error) {
	return NewParquetReaderBuilder(logger).WithStorageConfig(cfg).Build()
}
