package logger

import (
	"github.com/rs/zerolog"
)

// Logger is the configured process logger.
type Logger struct {
	zerolog zerolog.Logger
	opts    Options
}

func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zerolog
}

// Options returns the effective setup after defaults were applied.
func (l *Logger) Options() Options {
	return l.opts
}

func New(cfg FileLogConfig) (zerolog.Logger, error) {
	return NewWithRunID(cfg, "")
}

// NewWithRunID creates a logger whose file output lives under the run's own directory
func NewWithRunID(cfg FileLogConfig, runID string) (zerolog.Logger, error) {
	logger, err := NewLoggerBuilder().
		WithConfig(cfg).
		WithRunID(runID).
		Build()
	if err != nil {
		return zerolog.Logger{}, err
	}
	return *logger.GetZerolog(), nil
}
