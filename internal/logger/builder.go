package logger

import (
	"io"
	stdlog "log"
	"os"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/rs/zerolog"
)

// LoggerBuilder assembles the process logger from the file section and the run ID.
type LoggerBuilder struct {
	opts     Options
	console  io.Writer
	levelErr error
}

func NewLoggerBuilder() *LoggerBuilder {
	return &LoggerBuilder{
		opts:    defaultOptions(),
		console: os.Stderr,
	}
}

func (lb *LoggerBuilder) WithConfig(cfg FileLogConfig) *LoggerBuilder {
	runID := lb.opts.RunID
	lb.opts, lb.levelErr = cfg.options()
	lb.opts.RunID = runID
	return lb
}

// WithRunID tags records with the pipeline run and gives the run its own log file.
func (lb *LoggerBuilder) WithRunID(runID string) *LoggerBuilder {
	lb.opts.RunID = runID
	return lb
}

// WithConsoleOutput redirects console output, mostly useful in tests
func (lb *LoggerBuilder) WithConsoleOutput(w io.Writer) *LoggerBuilder {
	lb.console = w
	return lb
}

func (lb *LoggerBuilder) Build() (*Logger, error) {
	if lb.opts.MaxSizeMB <= 0 {
		return nil, common.NewValidationError("max_size_mb", lb.opts.MaxSizeMB, "max size must be positive")
	}

	var writers []io.Writer
	if lb.opts.Console {
		writers = append(writers, render(lb.opts.Format, lb.console, true))
	}
	if lb.opts.FilePath != "" {
		writers = append(writers, fileSink(lb.opts))
	}
	if len(writers) == 0 {
		return nil, common.NewError("no output writers configured")
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lb.opts.Level).
		With().
		Timestamp()
	if lb.opts.RunID != "" {
		ctx = ctx.Str("run_id", lb.opts.RunID)
	}
	zl := ctx.Logger()

	zerolog.SetGlobalLevel(lb.opts.Level)
	stdlog.SetOutput(zl)
	stdlog.SetFlags(0)

	if lb.levelErr != nil {
		zl.Warn().Err(lb.levelErr).Msg("Invalid log level in config, using info")
	}

	return &Logger{zerolog: zl, opts: lb.opts}, nil
}
