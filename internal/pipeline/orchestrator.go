package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/config"
	"github.com/aleister1102/pricefeed/internal/models"
	"github.com/aleister1102/pricefeed/internal/reports"
	"github.com/rs/zerolog"
)

// ErrStageNotConfigured is returned when a run needs a collaborator that was not provided.
var ErrStageNotConfigured = errors.New("stage not configured")

// Orchestrator runs a batch of targets through download, normalization and upload.
// Each target is handled on its own: a failure is recorded and the batch continues.
type Orchestrator struct {
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
	fileManager   *common.FileManager
	logger        zerolog.Logger

	driver Driver
}

// Run executes one batch and returns its itemized summary.
// The error is only set when the run could not start or was cancelled;
// per-item failures live in the summary.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*models.RunSummary, error) {
	if err := validateMode(opts.Mode); err != nil {
		return nil, err
	}
	targets, err := selectTargets(o.cfg.DownloadConfig.Targets, opts)
	if err != nil {
		return nil, err
	}
	if err := o.checkStages(opts.Mode); err != nil {
		return nil, err
	}

	runID := o.newRunID()
	summary := models.NewRunSummary(runID, opts.Mode, o.now())
	logger := o.logger.With().Str("run_id", runID).Str("mode", opts.Mode).Logger()
	logger.Info().Int("targets", len(targets)).Msg("Run started")

	if o.history != nil {
		if _, err := o.history.RecordRunStart(ctx, runID, opts.Mode, summary.StartTime); err != nil {
			logger.Warn().Err(err).Msg("Failed to record run start")
		}
	}

	switch opts.Mode {
	case config.ModeReport:
		o.runReports(ctx, summary, logger)
	default:
		o.runTargets(ctx, summary, targets, opts, logger)
	}
	o.closeDriver(logger)

	cancelled := ctx.Err() != nil
	summary.Finish(o.now(), cancelled)
	o.finishRun(ctx, summary, logger)

	if cancelled {
		return summary, ctx.Err()
	}
	return summary, nil
}

func (o *Orchestrator) checkStages(mode string) error {
	var missing []string
	needs := func(ok bool, name string) {
		if !ok {
			missing = append(missing, name)
		}
	}
	switch mode {
	case config.ModeIngest:
		needs(o.driverFactory != nil, "driver")
		needs(o.watcher != nil, "watcher")
		needs(o.normalizer != nil, "normalizer")
		needs(o.uploader != nil, "uploader")
	case config.ModeDownload:
		needs(o.driverFactory != nil, "driver")
		needs(o.watcher != nil, "watcher")
	case config.ModeProcess:
		needs(o.normalizer != nil, "normalizer")
	case config.ModeUpload:
		needs(o.uploader != nil, "uploader")
	case config.ModeReport:
		needs(o.reportRunner != nil, "report runner")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w for mode %s: %v", ErrStageNotConfigured, mode, missing)
	}
	return nil
}

func (o *Orchestrator) runTargets(ctx context.Context, summary *models.RunSummary, targets []models.DownloadTarget, opts RunOptions, logger zerolog.Logger) {
	if opts.Mode == config.ModeIngest || opts.Mode == config.ModeDownload {
		if err := o.prepareDownloadDir(opts.Clean || o.cfg.DownloadConfig.CleanDir, logger); err != nil {
			for _, t := range targets {
				summary.Add(failed(t.ID, models.StageDownload, err, 0))
			}
			return
		}
	}

	for _, target := range targets {
		if ctx.Err() != nil {
			summary.Add(models.ItemResult{Target: target.ID, Stage: models.StageDownload, Status: models.ItemSkipped, Error: "run cancelled"})
			continue
		}
		item := o.runTarget(ctx, target, summary.RunID, opts, logger.With().Str("target", target.ID).Logger())
		summary.Add(item)
	}
}

// runTarget takes one target as far as the mode goes and reports where it stopped.
func (o *Orchestrator) runTarget(ctx context.Context, target models.DownloadTarget, runID string, opts RunOptions, logger zerolog.Logger) models.ItemResult {
	start := o.now()
	item := models.ItemResult{Target: target.ID}
	finish := func(stage string, err error) models.ItemResult {
		item.Stage = stage
		item.Duration = o.now().Sub(start)
		if err != nil {
			item.Status = models.ItemFailed
			item.Error = err.Error()
			logger.Error().Err(err).Str("stage", stage).Msg("Target failed")
		} else {
			item.Status = models.ItemSucceeded
		}
		return item
	}

	var path string
	switch opts.Mode {
	case config.ModeIngest, config.ModeDownload:
		res, err := o.download(ctx, target, logger)
		if err != nil {
			return finish(models.StageDownload, err)
		}
		path = res.path
		item.FilePath = res.path
		item.Fallback = res.fallback
		if opts.Mode == config.ModeDownload {
			return finish(models.StageDownload, nil)
		}
	case config.ModeProcess:
		path = opts.File
		if path == "" {
			var err error
			path, err = o.normalizer.InputPath(o.inputDir(), target.Rename)
			if err != nil {
				return finish(models.StageNormalize, err)
			}
		}
	case config.ModeUpload:
		path = opts.File
		if path == "" {
			path = o.exportPath(target.Rename)
		}
		item.FilePath = path
		return o.uploadItem(ctx, &item, path, finish, logger)
	}

	result, err := o.normalizer.Process(target.Rename, path)
	if err != nil {
		return finish(models.StageNormalize, err)
	}
	item.FilePath = result.OutputPath
	item.Records = len(result.Records)
	o.recordSnapshot(ctx, &item, target.Rename, runID, result.Records, logger)
	o.archiveArtifact(ctx, target.Rename, runID, result.OutputPath, logger)

	if opts.Mode == config.ModeProcess {
		return finish(models.StageNormalize, nil)
	}
	return o.uploadItem(ctx, &item, result.OutputPath, finish, logger)
}

func (o *Orchestrator) uploadItem(ctx context.Context, item *models.ItemResult, path string, finish func(string, error) models.ItemResult, logger zerolog.Logger) models.ItemResult {
	res, err := o.uploader.Upload(ctx, path)
	if res != nil {
		item.Attempts = len(res.Attempts)
		item.Link = res.Link
	}
	if err == nil {
		logger.Info().Str("link", item.Link).Int("attempts", item.Attempts).Msg("Price list uploaded")
	}
	return finish(models.StageUpload, err)
}

func (o *Orchestrator) recordSnapshot(ctx context.Context, item *models.ItemResult, supplier, runID string, records []models.PriceRecord, logger zerolog.Logger) {
	if o.snapshots == nil {
		return
	}
	diff, err := o.snapshots.Record(ctx, supplier, runID, o.now(), records)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to record price snapshot")
		return
	}
	item.Diff = &diff
}
