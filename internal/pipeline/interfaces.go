package pipeline

import (
	"context"
	"time"

	"github.com/aleister1102/pricefeed/internal/archive"
	"github.com/aleister1102/pricefeed/internal/models"
	"github.com/aleister1102/pricefeed/internal/normalizer"
	"github.com/aleister1102/pricefeed/internal/reports"
	"github.com/aleister1102/pricefeed/internal/watcher"
)

// Driver performs the portal clicks that start a download.
type Driver interface {
	Trigger(ctx context.Context, target models.DownloadTarget) error
	Close() error
}

// DriverFactory opens the driver on first use, so runs without downloads never launch a browser.
type DriverFactory func(ctx context.Context) (Driver, error)

// DownloadWatcher waits for a triggered download to land.
type DownloadWatcher interface {
	Wait(ctx context.Context, req watcher.Request) (models.WatchResult, error)
}

// Normalizer converts a raw supplier list into the common schema.
type Normalizer interface {
	Process(supplier, path string) (*normalizer.Result, error)
	InputPath(dir, supplier string) (string, error)
}

// Uploader sends a normalized list to the upload API.
type Uploader interface {
	Upload(ctx context.Context, path string) (*models.UploadResult, error)
}

// SnapshotRecorder stores a price snapshot and diffs it against the previous one.
type SnapshotRecorder interface {
	Record(ctx context.Context, supplier, runID string, capturedAt time.Time, records []models.PriceRecord) (models.PriceDiff, error)
}

// Archiver copies a normalized list to long-term storage.
type Archiver interface {
	Archive(ctx context.Context, artifact archive.Artifact) (*archive.Result, error)
}

// HistoryRecorder persists runs and their items.
type HistoryRecorder interface {
	RecordRunStart(ctx context.Context, runID, mode string, startTime time.Time) (int64, error)
	RecordRunCompletion(ctx context.Context, summary *models.RunSummary) error
}

// RunNotifier announces a finished run.
type RunNotifier interface {
	SendRunSummary(ctx context.Context, summary *models.RunSummary)
}

// ReportRunner executes warehouse reports.
type ReportRunner interface {
	Run(ctx context.Context, reports []reports.Report) (*reports.Result, error)
}
