package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aleister1102/pricefeed/internal/config"
	"github.com/aleister1102/pricefeed/internal/logger"
	"github.com/aleister1102/pricefeed/internal/models"
	"github.com/aleister1102/pricefeed/internal/pipeline"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	exitFailure   = 1
	exitCancelled = 130
)

func main() {
	flags := ParseFlags()
	os.Exit(run(flags))
}

func run(flags AppFlags) int {
	bootLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile, bootLogger)
	if err != nil {
		fatalf("Could not load global config using path '%s': %v", flags.GlobalConfigFile, err)
	}

	if flags.Mode != "" {
		gCfg.Mode = flags.Mode
	}
	gCfg.Mode = strings.ToLower(gCfg.Mode)
	if flags.OutputDir != "" {
		if gCfg.Mode == config.ModeReport {
			gCfg.ReportConfig.OutputDir = flags.OutputDir
		} else {
			gCfg.NormalizerConfig.OutputDir = flags.OutputDir
		}
	}

	if err := config.ValidateConfig(gCfg); err != nil {
		fatalf("%v", err)
	}
	if err := config.ValidateForMode(gCfg, gCfg.Mode); err != nil {
		fatalf("%v", err)
	}

	runID := uuid.NewString()
	zLogger, err := logger.NewWithRunID(gCfg.LogConfig, runID)
	if err != nil {
		fatalf("Could not initialize logger: %v", err)
	}
	zLogger.Info().Str("mode", gCfg.Mode).Str("run_id", runID).Msg("pricefeed starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, gCfg, runID, zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("Failed to initialize components")
		return exitFailure
	}
	defer app.Close()

	summary, err := app.orchestrator.Run(ctx, pipeline.RunOptions{
		Mode:      gCfg.Mode,
		TargetIDs: flags.Targets,
		File:      flags.File,
		Clean:     flags.Clean,
	})
	if err != nil && summary == nil {
		zLogger.Error().Err(err).Msg("Run could not start")
		return exitFailure
	}
	fmt.Print(summary.Text())

	switch {
	case errors.Is(err, context.Canceled):
		zLogger.Warn().Msg("Run interrupted")
		return exitCancelled
	case summary.Status != models.RunCompleted:
		return exitFailure
	}
	return 0
}
