package datastore

import (
	"context"
	"errors"
	"time"

	"github.com/aleister1102/pricefeed/internal/config"
	"github.com/aleister1102/pricefeed/internal/models"
	"github.com/rs/zerolog"
)

// SnapshotStore records a price snapshot per run and diffs it against the previous one.
type SnapshotStore struct {
	reader      *ParquetReader
	writer      *ParquetWriter
	sampleLimit int
	logger      zerolog.Logger
}

// NewSnapshotStore wires a reader and writer over the same storage config.
func NewSnapshotStore(cfg *config.StorageConfig, logger zerolog.Logger) (*SnapshotStore, error) {
	reader, err := NewParquetReader(cfg, logger)
	if err != nil {
		return nil, err
	}
	writer, err := NewParquetWriter(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &SnapshotStore{
		reader:      reader,
		writer:      writer,
		sampleLimit: DefaultSampleLimit,
		logger:      logger.With().Str("component", "SnapshotStore").Logger(),
	}, nil
}

// Record stores the records of one supplier and returns the diff against the
// newest earlier snapshot. A missing previous snapshot yields HasPrevious=false.
func (s *SnapshotStore) Record(ctx context.Context, supplier, runID string, capturedAt time.Time, records []models.PriceRecord) (models.PriceDiff, error) {
	previous, info, err := s.reader.ReadLatestRecords(ctx, supplier, capturedAt)
	switch {
	case errors.Is(err, ErrNoSnapshot):
		previous = nil
	case err != nil:
		// A corrupt older snapshot should not block today's one.
		s.logger.Warn().Err(err).Str("supplier", supplier).Str("file_path", info.FilePath).Msg("Could not read previous snapshot")
		previous = nil
	}

	if _, err := s.writer.Write(ctx, WriteRequest{
		Supplier:   supplier,
		RunID:      runID,
		CapturedAt: capturedAt,
		Records:    records,
	}); err != nil {
		return models.PriceDiff{}, err
	}

	diff := DiffPrices(supplier, previous, records, s.sampleLimit)
	s.logger.Info().
		Str("supplier", supplier).
		Bool("has_previous", diff.HasPrevious).
		Int("added", diff.Added).
		Int("removed", diff.Removed).
		Int("changed", diff.Changed).
		Msg("Price snapshot recorded")
	return diff, nil
}
