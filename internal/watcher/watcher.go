package watcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/aleister1102/pricefeed/internal/models"
	"github.com/rs/zerolog"
)

// Config holds the polling behaviour of the download watcher.
type Config struct {
	PollInterval time.Duration
	InitialDelay time.Duration
	MaxWait      time.Duration
	// FallbackEnabled lets the watcher accept a file that was already in the
	// directory once FallbackAfter has passed without any change.
	FallbackEnabled bool
	FallbackAfter   time.Duration
	UseFSNotify     bool
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:  time.Second,
		InitialDelay:  3 * time.Second,
		MaxWait:       120 * time.Second,
		FallbackAfter: 45 * time.Second,
	}
}

// Request describes a single watch.
type Request struct {
	Target   string
	Dir      string
	Baseline models.DirectorySnapshot
	Patterns []string
	// MaxWait overrides Config.MaxWait when positive.
	MaxWait time.Duration
	// Reserved lists file stems (name without extension) owned by other targets.
	// The fallback never picks them.
	Reserved []string
}

// Watcher detects a finished browser download by polling a directory.
type Watcher struct {
	config Config
	clock  Clock
	logger zerolog.Logger
}

// NewWatcher creates a watcher.
func NewWatcher(config Config, logger zerolog.Logger) *Watcher {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultConfig().PollInterval
	}
	return &Watcher{
		config: config,
		clock:  realClock{},
		logger: logger.With().Str("component", "DownloadWatcher").Logger(),
	}
}

// WithClock replaces the time source.
func (w *Watcher) WithClock(clock Clock) *Watcher {
	w.clock = clock
	return w
}

// Wait polls req.Dir until a new or modified file shows up or the wait budget is spent.
// Not finding a file is reported through WatchResult.Found, not as an error.
// The only error returned is the context's.
func (w *Watcher) Wait(ctx context.Context, req Request) (models.WatchResult, error) {
	dir, err := filepath.Abs(req.Dir)
	if err != nil {
		dir = req.Dir
	}
	maxWait := req.MaxWait
	if maxWait <= 0 {
		maxWait = w.config.MaxWait
	}
	logger := w.logger.With().Str("target", req.Target).Str("dir", dir).Logger()

	var wake <-chan struct{}
	if w.config.UseFSNotify {
		notifier, err := newDirNotifier(dir, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("fsnotify unavailable, polling only")
		} else {
			defer notifier.Close()
			wake = notifier.Wake()
		}
	}

	start := w.clock.Now()
	deadline := start.Add(maxWait)
	polls := 0
	wait := w.config.InitialDelay
	if wait <= 0 {
		wait = w.config.PollInterval
	}

	logger.Info().
		Dur("max_wait", maxWait).
		Int("baseline_files", len(req.Baseline)).
		Strs("patterns", req.Patterns).
		Msg("Waiting for download")

	for {
		if err := ctx.Err(); err != nil {
			return models.NotFound(polls, w.clock.Now().Sub(start)), err
		}
		remaining := deadline.Sub(w.clock.Now())
		if remaining <= 0 {
			break
		}
		if wait > remaining {
			wait = remaining
		}

		select {
		case <-ctx.Done():
			return models.NotFound(polls, w.clock.Now().Sub(start)), ctx.Err()
		case <-w.clock.After(wait):
		case <-wake:
		}
		wait = w.config.PollInterval
		polls++

		current := scanDirectory(dir)
		elapsed := w.clock.Now().Sub(start)
		logger.Debug().Int("poll", polls).Int("files", len(current)).Dur("elapsed", elapsed).Msg("Polled download directory")

		if result, ok := w.detect(req, current, polls, elapsed, logger); ok {
			return result, nil
		}

		if w.config.FallbackEnabled && elapsed >= w.config.FallbackAfter {
			if path, matched, ok := selectFile(withoutReserved(allFiles(current), req.Reserved), req.Patterns); ok {
				logger.Warn().
					Str("file", filepath.Base(path)).
					Bool("pattern_match", matched).
					Dur("elapsed", elapsed).
					Msg("No change detected, falling back to an existing file; it may be left over from a previous run")
				return models.WatchResult{Path: path, Found: true, Fallback: true, Polls: polls, Elapsed: elapsed}, nil
			}
		}
	}

	// One last look in case the file landed right at the deadline.
	elapsed := w.clock.Now().Sub(start)
	if result, ok := w.detect(req, scanDirectory(dir), polls, elapsed, logger); ok {
		return result, nil
	}

	logger.Warn().Int("polls", polls).Dur("elapsed", elapsed).Msg("No download detected")
	return models.NotFound(polls, elapsed), nil
}

func (w *Watcher) detect(req Request, current map[string]models.FileState, polls int, elapsed time.Duration, logger zerolog.Logger) (models.WatchResult, bool) {
	path, matched, ok := selectFile(changedFiles(req.Baseline, current), req.Patterns)
	if !ok {
		return models.WatchResult{}, false
	}
	logger.Info().
		Str("file", filepath.Base(path)).
		Bool("pattern_match", matched).
		Int("polls", polls).
		Dur("elapsed", elapsed).
		Msg("Download detected")
	return models.WatchResult{Path: path, Found: true, Polls: polls, Elapsed: elapsed}, true
}
