package retry

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/cinebase/cinebase/internal/tmdb"
)

// Config configures the exponential backoff retry behavior.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultConfig returns the standard catalogue retry policy: up to three
// attempts with delays of 1s then 2s between them.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}
}

// IsRetryable reports whether an error is worth retrying. Client errors
// (4xx) indicate a bad request or a missing resource and will not improve
// on retry; cancellation means the caller has moved on.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *tmdb.APIError
	if errors.As(err, &apiErr) {
		return !apiErr.IsClientError()
	}
	return true
}

// Do executes fn with exponential backoff. The delay before attempt n is
// BaseDelay << (n-1). The last attempt's error is returned unchanged so
// callers can still inspect its type.
func Do(ctx context.Context, name string, cfg Config, logger zerolog.Logger, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info().Str("operation", name).Int("attempt", attempt).Msg("operation succeeded after retry")
			}
			return nil
		}

		lastErr = err

		if !IsRetryable(err) {
			logger.Debug().Err(err).Str("operation", name).Msg("non-retryable error")
			return err
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		delay := cfg.BaseDelay << (attempt - 1)
		logger.Warn().
			Err(err).
			Str("operation", name).
			Int("attempt", attempt).
			Int("maxAttempts", cfg.MaxAttempts).
			Dur("nextRetryIn", delay).
			Msg("transient error, will retry")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	logger.Error().Err(lastErr).Str("operation", name).Int("attempts", cfg.MaxAttempts).
		Msg("operation failed after all retries")
	return lastErr
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, name string, cfg Config, logger zerolog.Logger, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, name, cfg, logger, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
