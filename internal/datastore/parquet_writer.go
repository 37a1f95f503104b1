package datastore

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/config"
	"github.com/aleister1102/pricefeed/internal/models"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

// ParquetWriter writes per-supplier price snapshots.
type ParquetWriter struct {
	config       *config.StorageConfig
	logger       zerolog.Logger
	fileManager  *common.FileManager
	writerConfig ParquetWriterConfig
}

// ParquetWriterBuilder provides a fluent interface for creating ParquetWriter
type ParquetWriterBuilder struct {
	config       *config.StorageConfig
	logger       zerolog.Logger
	writerConfig ParquetWriterConfig
}

// NewParquetWriterBuilder creates a new ParquetWriterBuilder
func NewParquetWriterBuilder(logger zerolog.Logger) *ParquetWriterBuilder {
	return &ParquetWriterBuilder{
		logger:       logger.With().Str("component", "ParquetWriter").Logger(),
		writerConfig: DefaultParquetWriterConfig(),
	}
}

// WithStorageConfig sets the storage configuration
func (b *ParquetWriterBuilder) WithStorageConfig(cfg *config.StorageConfig) *ParquetWriterBuilder {
	b.config = cfg
	if cfg != nil && cfg.CompressionCodec != "" {
		b.writerConfig.CompressionType = cfg.CompressionCodec
	}
	return b
}

// WithWriterConfig sets the writer configuration
func (b *ParquetWriterBuilder) WithWriterConfig(cfg ParquetWriterConfig) *ParquetWriterBuilder {
	b.writerConfig = cfg
	return b
}

// Build creates a new ParquetWriter instance
func (b *ParquetWriterBuilder) Build() (*ParquetWriter, error) {
	if b.config == nil {
		return nil, common.NewValidationError("config", b.config, "storage config cannot be nil")
	}
	if b.config.ParquetBasePath == "" {
		return nil, common.NewValidationError("parquet_base_path", b.config.ParquetBasePath, "ParquetBasePath is not configured")
	}

	return &ParquetWriter{
		config:       b.config,
		logger:       b.logger,
		fileManager:  common.NewFileManager(b.logger),
		writerConfig: b.writerConfig,
	}, nil
}

// NewParquetWriter creates a new ParquetWriter using builder pattern
func NewParquetWriter(cfg *config.StorageConfig, logger zerolog.Logger) (*ParquetWriter, error) {
	return NewParquetWriterBuilder(logger).
		WithStorageConfig(cfg).
		Build()
}

// WriteRequest encapsulates a write request
type WriteRequest struct {
	Supplier   string
	RunID      string
	CapturedAt time.Time
	Records    []models.PriceRecord
}

// WriteResult contains the result of a write operation
type WriteResult struct {
	FilePath       string
	RecordsWritten int
	FileSize       int64
	WriteTime      time.Duration
}

// Write stores one supplier snapshot.
func (pw *ParquetWriter) Write(ctx context.Context, request WriteRequest) (*WriteResult, error) {
	startTime := time.Now()

	if SanitizeName(request.Supplier) == "" {
		return nil, common.NewValidationError("supplier", request.Supplier, "supplier name is empty after sanitizing")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filePath := snapshotPath(pw.config.ParquetBasePath, request.Supplier, request.CapturedAt)
	if err := pw.fileManager.EnsureDirectory(filepath.Dir(filePath), 0755); err != nil {
		return nil, err
	}

	rows := ToParquetRecords(request.Supplier, request.RunID, request.CapturedAt, request.Records)
	written, err := pw.writeToParquetFile(filePath, rows)
	if err != nil {
		return nil, err
	}

	var size int64
	if info, err := os.Stat(filePath); err == nil {
		size = info.Size()
	}

	result := &WriteResult{
		FilePath:       filePath,
		RecordsWritten: written,
		FileSize:       size,
		WriteTime:      time.Since(startTime),
	}
	pw.logger.Info().
		Str("supplier", request.Supplier).
		Str("file_path", filePath).
		Int("records_written", written).
		Dur("write_time", result.WriteTime).
		Msg("Wrote price snapshot")
	return result, nil
}

// writeToParquetFile writes the rows to a new Parquet file
func (pw *ParquetWriter) writeToParquetFile(filePath string, rows []models.ParquetPriceRecord) (int, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return 0, common.WrapError(err, "failed to create/truncate parquet file: "+filePath)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[models.ParquetPriceRecord](file, pw.getCompressionOption())
	written, err := writer.Write(rows)
	if err != nil {
		_ = writer.Close()
		return 0, common.WrapError(err, "failed to write price snapshot")
	}
	if err := writer.Close(); err != nil {
		return 0, common.WrapError(err, "failed to finalize parquet file")
	}
	return written, nil
}

// getCompressionOption returns the compression option based on configuration
func (pw *ParquetWriter) getCompressionOption() parquet.WriterOption {
	switch pw.writerConfig.CompressionType {
	case "gzip":
		return parquet.Compression(&parquet.Gzip)
	case "snappy":
		return parquet.Compression(&parquet.Snappy)
	case "none":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		return parquet.Compression(&parquet.Zstd)
	}
}
