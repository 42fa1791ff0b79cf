package retry

import (
	"context"
	"time"

	"github.com/kwerner/anvil"
)

// effectiveDelay returns the delay to use, honoring the server's
// Retry-After hint if it is larger than the configured backoff.
func effectiveDelay(configured time.Duration, err error) time.Duration {
	if server := anvil.RetryAfterOf(err); server > configured {
		return server
	}
	return configured
}

// Do executes fn with retry logic. It respects context cancellation during
// backoff waits and returns the result on success, or the last error if all
// attempts fail. Non-transient errors are returned immediately.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !anvil.IsTransient(err) {
			return zero, err
		}

		// Don't sleep after the last attempt.
		if attempt < cfg.MaxAttempts-1 {
			delay := effectiveDelay(cfg.Delay(attempt), err)

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return zero, lastErr
}
