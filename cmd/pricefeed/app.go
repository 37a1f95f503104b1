package main

import (
	"context"
	"database/sql"

	"github.com/aleister1102/pricefeed/internal/archive"
	"github.com/aleister1102/pricefeed/internal/browser"
	"github.com/aleister1102/pricefeed/internal/config"
	"github.com/aleister1102/pricefeed/internal/datastore"
	"github.com/aleister1102/pricefeed/internal/history"
	"github.com/aleister1102/pricefeed/internal/normalizer"
	"github.com/aleister1102/pricefeed/internal/notifier"
	"github.com/aleister1102/pricefeed/internal/pipeline"
	"github.com/aleister1102/pricefeed/internal/reports"
	"github.com/aleister1102/pricefeed/internal/uploader"
	"github.com/aleister1102/pricefeed/internal/watcher"
	"github.com/rs/zerolog"
)

// app owns the orchestrator and everything that has to be closed after the run.
type app struct {
	orchestrator *pipeline.Orchestrator
	closers      []func() error
	logger       zerolog.Logger
}

func newApp(ctx context.Context, gCfg *config.GlobalConfig, runID string, logger zerolog.Logger) (*app, error) {
	a := &app{logger: logger}
	builder := pipeline.NewOrchestratorBuilder(logger).
		WithConfig(gCfg).
		WithRunIDGenerator(func() string { return runID })

	switch gCfg.Mode {
	case config.ModeReport:
		if err := a.wireReports(ctx, gCfg, builder); err != nil {
			a.Close()
			return nil, err
		}
	default:
		if err := a.wireTargets(ctx, gCfg, builder); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.wireHistory(gCfg, builder)
	if err := a.wireNotifier(gCfg, builder); err != nil {
		a.Close()
		return nil, err
	}

	orch, err := builder.Build()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.orchestrator = orch
	return a, nil
}

func (a *app) wireTargets(ctx context.Context, gCfg *config.GlobalConfig, builder *pipeline.OrchestratorBuilder) error {
	dl := gCfg.DownloadConfig
	builder.
		WithDriverFactory(func(ctx context.Context) (pipeline.Driver, error) {
			session, err := browser.NewSession(ctx, gCfg.PortalConfig, dl.Dir, dl.ScreenshotPath(), a.logger)
			if err != nil {
				return nil, err
			}
			return session, nil
		}).
		WithWatcher(watcher.NewWatcher(watcher.Config{
			PollInterval:    dl.PollInterval(),
			InitialDelay:    dl.InitialDelay(),
			MaxWait:         dl.MaxWait(),
			FallbackEnabled: dl.FallbackEnabled,
			FallbackAfter:   dl.FallbackAfter(),
			UseFSNotify:     dl.UseFSNotify,
		}, a.logger)).
		WithNormalizer(normalizer.NewNormalizer(gCfg.NormalizerConfig, a.logger))

	if gCfg.UploadConfig.APIURL != "" {
		up, err := uploader.NewUploaderBuilder(a.logger).WithConfig(gCfg.UploadConfig).Build()
		if err != nil {
			return err
		}
		builder.WithUploader(up)
	}

	if gCfg.StorageConfig.SnapshotsEnabled {
		store, err := datastore.NewSnapshotStore(&gCfg.StorageConfig, a.logger)
		if err != nil {
			a.logger.Warn().Err(err).Msg("Price snapshots disabled")
		} else {
			builder.WithSnapshots(store)
		}
	}

	if gCfg.ArchiveConfig.Enabled {
		client, err := archive.NewClient(ctx, gCfg.ArchiveConfig)
		if err != nil {
			a.logger.Warn().Err(err).Msg("Archiving disabled")
			return nil
		}
		archiver := archive.NewArchiver(client, gCfg.ArchiveConfig.Bucket, gCfg.ArchiveConfig.Prefix, a.logger)
		a.closers = append(a.closers, archiver.Close)
		builder.WithArchiver(archiver)
	}
	return nil
}

func (a *app) wireReports(ctx context.Context, gCfg *config.GlobalConfig, builder *pipeline.OrchestratorBuilder) error {
	db, err := reports.OpenWarehouse(ctx, gCfg.ReportConfig)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, db.Close)

	selected, unknown := reports.Select(reports.Catalog(), gCfg.ReportConfig.Reports)
	if len(unknown) > 0 {
		a.logger.Warn().Strs("reports", unknown).Msg("Ignoring unknown reports")
	}
	builder.WithReports(newReportRunner(db, gCfg.ReportConfig, a.logger), selected)
	return nil
}

func newReportRunner(db *sql.DB, cfg config.ReportConfig, logger zerolog.Logger) *reports.Runner {
	return reports.NewRunner(db, cfg.OutputDir, cfg.Concurrency, logger)
}

func (a *app) wireHistory(gCfg *config.GlobalConfig, builder *pipeline.OrchestratorBuilder) {
	if !gCfg.StorageConfig.HistoryEnabled || gCfg.StorageConfig.HistoryDBPath == "" {
		return
	}
	db, err := history.NewDB(gCfg.StorageConfig.HistoryDBPath, a.logger)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Run history disabled")
		return
	}
	a.closers = append(a.closers, db.Close)
	builder.WithHistory(db)
}

func (a *app) wireNotifier(gCfg *config.GlobalConfig, builder *pipeline.OrchestratorBuilder) error {
	var sender notifier.Sender
	if url := gCfg.NotificationConfig.DiscordWebhookURL; url != "" {
		discord, err := notifier.NewDiscordNotifier(url, nil, a.logger)
		if err != nil {
			return err
		}
		sender = discord
	}
	builder.WithNotifier(notifier.NewNotificationHelper(sender, gCfg.NotificationConfig, a.logger))
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to release resource")
		}
	}
	a.closers = nil
}
