package pipeline

import (
	"time"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/config"
	"github.com/aleister1102/pricefeed/internal/reports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrchestratorBuilder provides a fluent interface for creating an Orchestrator.
type OrchestratorBuilder struct {
	cfg           *config.GlobalConfig
	driverFactory DriverFactory
	watcher       DownloadWatcher
	normalizer    Normalizer
	uploader      Uploader
	snapshots     SnapshotRecorder
	archiver      Archiver
	history       HistoryRecorder
	notifier      RunNotifier
	reportRunner  ReportRunner
	reports       []reports.Report
	now           func() time.Time
	newRunID      func() string
	logger        zerolog.Logger
}

// NewOrchestratorBuilder creates a new OrchestratorBuilder.
func NewOrchestratorBuilder(logger zerolog.Logger) *OrchestratorBuilder {
	return &OrchestratorBuilder{
		now:      time.Now,
		newRunID: uuid.NewString,
		logger:   logger.With().Str("component", "Orchestrator").Logger(),
	}
}

// WithConfig sets the global configuration.
func (b *OrchestratorBuilder) WithConfig(cfg *config.GlobalConfig) *OrchestratorBuilder {
	b.cfg = cfg
	return b
}

// WithDriverFactory sets how the portal driver is opened.
func (b *OrchestratorBuilder) WithDriverFactory(factory DriverFactory) *OrchestratorBuilder {
	b.driverFactory = factory
	return b
}

// WithWatcher sets the download watcher.
func (b *OrchestratorBuilder) WithWatcher(w DownloadWatcher) *OrchestratorBuilder {
	b.watcher = w
	return b
}

// WithNormalizer sets the normalizer.
func (b *OrchestratorBuilder) WithNormalizer(n Normalizer) *OrchestratorBuilder {
	b.normalizer = n
	return b
}

// WithUploader sets the uploader.
func (b *OrchestratorBuilder) WithUploader(u Uploader) *OrchestratorBuilder {
	b.uploader = u
	return b
}

// WithSnapshots enables price snapshots.
func (b *OrchestratorBuilder) WithSnapshots(s SnapshotRecorder) *OrchestratorBuilder {
	b.snapshots = s
	return b
}

// WithArchiver enables archiving of normalized lists.
func (b *OrchestratorBuilder) WithArchiver(a Archiver) *OrchestratorBuilder {
	b.archiver = a
	return b
}

// WithHistory enables run history.
func (b *OrchestratorBuilder) WithHistory(h HistoryRecorder) *OrchestratorBuilder {
	b.history = h
	return b
}

// WithNotifier enables run notifications.
func (b *OrchestratorBuilder) WithNotifier(n RunNotifier) *OrchestratorBuilder {
	b.notifier = n
	return b
}

// WithReports sets the report runner and the reports it runs.
func (b *OrchestratorBuilder) WithReports(runner ReportRunner, selected []reports.Report) *OrchestratorBuilder {
	b.reportRunner = runner
	b.reports = selected
	return b
}

// WithClock replaces the time source.
func (b *OrchestratorBuilder) WithClock(now func() time.Time) *OrchestratorBuilder {
	b.now = now
	return b
}

// WithRunIDGenerator replaces the run ID source.
func (b *OrchestratorBuilder) WithRunIDGenerator(f func() string) *OrchestratorBuilder {
	b.newRunID = f
	return b
}

// Build creates the Orchestrator. Stage collaborators are checked when a run needs them.
func (b *OrchestratorBuilder) Build() (*Orchestrator, error) {
	if b.cfg == nil {
		return nil, common.NewValidationError("config", b.cfg, "global config cannot be nil")
	}
	return &Orchestrator{
		cfg:           b.cfg,
		driverFactory: b.driverFactory,
		watcher:       b.watcher,
		normalizer:    b.normalizer,
		uploader:      b.uploader,
		snapshots:     b.snapshots,
		archiver:      b.archiver,
		history:       b.history,
		notifier:      b.notifier,
		reportRunner:  b.reportRunner,
		reports:       b.reports,
		now:           b.now,
		newRunID:      b.newRunID,
		fileManager:   common.NewFileManager(b.logger),
		logger:        b.logger,
	}, nil
}
