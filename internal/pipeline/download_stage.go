package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aleister1102/pricefeed/internal/models"
	"github.com/aleister1102/pricefeed/internal/watcher"
	"github.com/rs/zerolog"
)

type downloaded struct {
	path     string
	fallback bool
}

// prepareDownloadDir makes sure the directory exists and optionally clears
// leftover downloads from earlier runs. Screenshots and hidden files stay.
func (o *Orchestrator) prepareDownloadDir(clean bool, logger zerolog.Logger) error {
	dir := o.cfg.DownloadConfig.Dir
	if err := o.fileManager.EnsureDirectory(dir, 0755); err != nil {
		return err
	}
	if !clean {
		return nil
	}
	if _, err := o.fileManager.CleanDirectory(dir, func(name string) bool {
		return watcher.IsResultCandidate(filepath.Join(dir, name))
	}); err != nil {
		logger.Warn().Err(err).Msg("Some files could not be removed from the download directory")
	}
	return nil
}

func (o *Orchestrator) ensureDriver(ctx context.Context) (Driver, error) {
	if o.driver != nil {
		return o.driver, nil
	}
	driver, err := o.driverFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open portal driver: %w", err)
	}
	o.driver = driver
	return driver, nil
}

func (o *Orchestrator) closeDriver(logger zerolog.Logger) {
	if o.driver == nil {
		return
	}
	if err := o.driver.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close portal driver")
	}
	o.driver = nil
}

// reservedNames are the stems other targets rename their downloads to.
func (o *Orchestrator) reservedNames(target models.DownloadTarget) []string {
	var names []string
	for _, t := range o.cfg.DownloadConfig.Targets {
		if t.ID != target.ID && t.Rename != "" {
			names = append(names, t.Rename)
		}
	}
	return names
}

// download snapshots the directory, triggers the target, waits for the file and
// renames it after the target. Not finding a file becomes a DownloadTimeoutError here.
func (o *Orchestrator) download(ctx context.Context, target models.DownloadTarget, logger zerolog.Logger) (downloaded, error) {
	driver, err := o.ensureDriver(ctx)
	if err != nil {
		return downloaded{}, err
	}

	dir := o.cfg.DownloadConfig.Dir
	baseline, err := watcher.CaptureSnapshot(dir)
	if err != nil {
		logger.Warn().Err(err).Msg("Could not snapshot download directory, treating every file as new")
		baseline = models.DirectorySnapshot{}
	}

	if err := driver.Trigger(ctx, target); err != nil {
		return downloaded{}, fmt.Errorf("failed to trigger download: %w", err)
	}

	maxWait := target.MaxWait(o.cfg.DownloadConfig.MaxWait())
	result, err := o.watcher.Wait(ctx, watcher.Request{
		Target:   target.ID,
		Dir:      dir,
		Baseline: baseline,
		Patterns: target.Patterns,
		MaxWait:  maxWait,
		Reserved: o.reservedNames(target),
	})
	if err != nil {
		return downloaded{}, err
	}
	if !result.Found {
		return downloaded{}, &models.DownloadTimeoutError{Target: target.ID, MaxWait: maxWait, Polls: result.Polls}
	}

	dst := target.RenamedPath(result.Path)
	if err := o.fileManager.ReplaceFile(result.Path, dst); err != nil {
		return downloaded{}, err
	}
	logger.Info().
		Str("file", filepath.Base(result.Path)).
		Str("renamed", filepath.Base(dst)).
		Bool("fallback", result.Fallback).
		Msg("Download stored")
	return downloaded{path: dst, fallback: result.Fallback}, nil
}
