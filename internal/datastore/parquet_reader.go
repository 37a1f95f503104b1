package datastore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/config"
	"github.com/aleister1102/pricefeed/internal/models"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

// SnapshotInfo locates one stored snapshot.
type SnapshotInfo struct {
	Supplier   string
	FilePath   string
	CapturedAt time.Time
}

// ParquetReader reads stored price snapshots.
type ParquetReader struct {
	storageConfig *config.StorageConfig
	logger        zerolog.Logger
	fileManager   *common.FileManager
}

// ListSnapshots returns a supplier's snapshots, oldest first.
func (pr *ParquetReader) ListSnapshots(supplier string) ([]SnapshotInfo, error) {
	dir := supplierDir(pr.storageConfig.ParquetBasePath, supplier)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, common.WrapError(err, "failed to list snapshots in "+dir)
	}

	var snapshots []SnapshotInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		capturedAt, err := time.ParseInLocation(sessionLayout, entry.Name(), time.UTC)
		if err != nil {
			pr.logger.Debug().Str("dir", entry.Name()).Msg("Skipping non-session directory")
			continue
		}
		filePath := filepath.Join(dir, entry.Name(), snapshotFileName)
		if !pr.fileManager.FileExists(filePath) {
			continue
		}
		snapshots = append(snapshots, SnapshotInfo{Supplier: supplier, FilePath: filePath, CapturedAt: capturedAt})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CapturedAt.Before(snapshots[j].CapturedAt)
	})
	return snapshots, nil
}

// LatestSnapshot returns the newest snapshot taken strictly before the given time.
// A zero time means no upper bound.
func (pr *ParquetReader) LatestSnapshot(supplier string, before time.Time) (SnapshotInfo, error) {
	snapshots, err := pr.ListSnapshots(supplier)
	if err != nil {
		return SnapshotInfo{}, err
	}
	for i := len(snapshots) - 1; i >= 0; i-- {
		if before.IsZero() || snapshots[i].CapturedAt.Before(before.UTC().Truncate(time.Second)) {
			return snapshots[i], nil
		}
	}
	return SnapshotInfo{}, ErrNoSnapshot
}

// ReadRecords reads all rows of one snapshot file.
func (pr *ParquetReader) ReadRecords(ctx context.Context, filePath string) ([]models.ParquetPriceRecord, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, common.WrapError(err, "failed to open parquet file "+filePath)
	}
	defer file.Close()

	reader := parquet.NewReader(file)
	defer reader.Close()

	var rows []models.ParquetPriceRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var row models.ParquetPriceRecord
		if err := reader.Read(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, common.WrapError(err, "failed to read parquet row")
		}
		rows = append(rows, row)
	}

	pr.logger.Debug().Str("file_path", filePath).Int("rows", len(rows)).Msg("Read price snapshot")
	return rows, nil
}

// ReadLatestRecords returns the newest snapshot before the given time as price records.
func (pr *ParquetReader) ReadLatestRecords(ctx context.Context, supplier string, before time.Time) ([]models.PriceRecord, SnapshotInfo, error) {
	info, err := pr.LatestSnapshot(supplier, before)
	if err != nil {
		return nil, SnapshotInfo{}, err
	}
	rows, err := pr.ReadRecords(ctx, info.FilePath)
	if err != nil {
		return nil, info, err
	}
	records := make([]models.PriceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, FromParquetRecord(row))
	}
	return records, info, nil
}
