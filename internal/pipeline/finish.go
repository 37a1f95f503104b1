package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/aleister1102/pricefeed/internal/archive"
	"github.com/aleister1102/pricefeed/internal/models"
	"github.com/aleister1102/pricefeed/internal/normalizer"
	"github.com/rs/zerolog"
)

func failed(target, stage string, err error, d time.Duration) models.ItemResult {
	return models.ItemResult{Target: target, Stage: stage, Status: models.ItemFailed, Error: err.Error(), Duration: d}
}

// inputDir is where process runs look for raw lists.
func (o *Orchestrator) inputDir() string {
	if o.cfg.NormalizerConfig.InputDir != "" {
		return o.cfg.NormalizerConfig.InputDir
	}
	return o.cfg.DownloadConfig.Dir
}

// exportPath is today's normalized list of a supplier.
func (o *Orchestrator) exportPath(supplier string) string {
	return filepath.Join(o.cfg.NormalizerConfig.OutputDir, normalizer.ExportFileName(supplier, o.now()))
}

func (o *Orchestrator) archiveArtifact(ctx context.Context, supplier, runID, path string, logger zerolog.Logger) {
	if o.archiver == nil {
		return
	}
	res, err := o.archiver.Archive(ctx, archive.Artifact{Supplier: supplier, RunID: runID, Path: path})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to archive normalized list")
		return
	}
	logger.Debug().Str("object", res.Object).Msg("Normalized list archived")
}

// finishRun logs the itemized summary, stores it and sends the notification.
// Bookkeeping outlives a cancelled run context.
func (o *Orchestrator) finishRun(ctx context.Context, summary *models.RunSummary, logger zerolog.Logger) {
	bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if o.history != nil {
		if err := o.history.RecordRunCompletion(bgCtx, summary); err != nil {
			logger.Warn().Err(err).Msg("Failed to record run completion")
		}
	}

	event := logger.Info()
	if summary.Failed() > 0 {
		event = logger.Warn()
	}
	event.
		Str("status", string(summary.Status)).
		Int("succeeded", summary.Succeeded()).
		Int("failed", summary.Failed()).
		Dur("duration", summary.Duration()).
		Msg("Run finished\n" + summary.Text())

	if o.notifier != nil {
		o.notifier.SendRunSummary(bgCtx, summary)
	}
}
