package httpclient

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// RetryHandler computes and waits out exponential backoff delays with additive jitter.
type RetryHandler struct {
	maxRetries int
	baseDelay  time.Duration
	maxJitter  time.Duration
	randFloat  func() float64
	after      func(time.Duration) <-chan time.Time
	logger     zerolog.Logger
}

// RetryHandlerConfig configuration for retry handler
type RetryHandlerConfig struct {
	MaxRetries int           `json:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay"`
	MaxJitter  time.Duration `json:"max_jitter"`
}

// NewRetryHandler creates a new retry handler
func NewRetryHandler(config RetryHandlerConfig, logger zerolog.Logger) *RetryHandler {
	return &RetryHandler{
		maxRetries: config.MaxRetries,
		baseDelay:  config.BaseDelay,
		maxJitter:  config.MaxJitter,
		randFloat:  rand.Float64,
		after:      time.After,
		logger:     logger.With().Str("component", "RetryHandler").Logger(),
	}
}

// WithRand replaces the jitter source. f must return values in [0, 1).
func (rh *RetryHandler) WithRand(f func() float64) *RetryHandler {
	rh.randFloat = f
	return rh
}

// WithAfter replaces the timer used by WaitForRetry.
func (rh *RetryHandler) WithAfter(f func(time.Duration) <-chan time.Time) *RetryHandler {
	rh.after = f
	return rh
}

// MaxRetries returns how many retries follow the first attempt.
func (rh *RetryHandler) MaxRetries() int {
	return rh.maxRetries
}

// CanRetry reports whether another attempt is allowed after the given zero-based attempt.
func (rh *RetryHandler) CanRetry(attempt int) bool {
	return attempt < rh.maxRetries
}

// CalculateDelay returns baseDelay * 2^attempt plus a uniform jitter in [0, maxJitter).
// The delay is not capped.
func (rh *RetryHandler) CalculateDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := time.Duration(float64(rh.baseDelay) * math.Pow(2, float64(attempt)))
	if rh.maxJitter > 0 {
		delay += time.Duration(rh.randFloat() * float64(rh.maxJitter))
	}
	return delay
}

// WaitForRetry sleeps for the delay of the given attempt and returns it.
// It returns early with the context error when ctx is cancelled.
func (rh *RetryHandler) WaitForRetry(ctx context.Context, attempt int, reason string) (time.Duration, error) {
	delay := rh.CalculateDelay(attempt)

	rh.logger.Warn().
		Str("reason", reason).
		Int("attempt", attempt+1).
		Int("max_retries", rh.maxRetries).
		Dur("delay", delay).
		Msg("Retryable failure, waiting before retry")

	select {
	case <-ctx.Done():
		return delay, ctx.Err()
	case <-rh.after(delay):
		return delay, nil
	}
}
