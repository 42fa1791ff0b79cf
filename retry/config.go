// Package retry provides bounded exponential backoff for transient errors.
//
// Retry decisions are driven by [anvil.IsTransient]: permanent errors are
// returned immediately, transient errors are retried up to MaxAttempts with
// exponentially increasing delays.
package retry

import (
	"math"
	"math/rand"
	"time"
)

// Config controls retry behavior.
type Config struct {
	// MaxAttempts is the maximum number of attempts (default: 3).
	// The initial request counts as attempt 1.
	MaxAttempts int

	// InitialDelay is the base delay before the first retry (default: 1s).
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries (default: 30s).
	MaxDelay time.Duration

	// Multiplier is the exponential backoff multiplier (default: 2.0).
	Multiplier float64

	// Jitter adds randomness to prevent thundering herd (default: 0.1 = 10%).
	// Delay is multiplied by (1 + random(-jitter, +jitter)).
	Jitter float64
}

// DefaultConfig returns the default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// Delay returns the backoff delay for the given zero-indexed attempt.
func (c Config) Delay(attempt int) time.Duration {
	base := float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt))
	if max := float64(c.MaxDelay); base > max {
		base = max
	}
	if c.Jitter > 0 {
		base *= 1 + c.Jitter*(2*rand.Float64()-1)
	}
	return time.Duration(base)
}
