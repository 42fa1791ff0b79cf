package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwerner/anvil"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDo(t *testing.T) {
	t.Run("returns on first success", func(t *testing.T) {
		calls := 0
		result, err := Do(context.Background(), fastConfig(), func() (string, error) {
			calls++
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient errors", func(t *testing.T) {
		calls := 0
		result, err := Do(context.Background(), fastConfig(), func() (string, error) {
			calls++
			if calls < 3 {
				return "", anvil.NewTransientError("overloaded", 529, nil)
			}
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent error", func(t *testing.T) {
		calls := 0
		_, err := Do(context.Background(), fastConfig(), func() (string, error) {
			calls++
			return "", anvil.NewPermanentError("unauthorized", 401, nil)
		})

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("returns last error after exhausting attempts", func(t *testing.T) {
		calls := 0
		_, err := Do(context.Background(), fastConfig(), func() (string, error) {
			calls++
			return "", anvil.NewTransientError("rate limited", 429, nil)
		})

		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.True(t, anvil.IsTransient(err))
	})

	t.Run("honors context cancellation during backoff", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		cfg := fastConfig()
		cfg.InitialDelay = time.Minute
		cfg.MaxDelay = time.Minute

		calls := 0
		done := make(chan error, 1)
		go func() {
			_, err := Do(ctx, cfg, func() (string, error) {
				calls++
				return "", anvil.NewTransientError("overloaded", 503, nil)
			})
			done <- err
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()

		err := <-done
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("non-categorized errors are not retried", func(t *testing.T) {
		calls := 0
		_, err := Do(context.Background(), fastConfig(), func() (string, error) {
			calls++
			return "", errors.New("plain failure")
		})

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestEffectiveDelay(t *testing.T) {
	t.Run("server hint wins when larger", func(t *testing.T) {
		err := anvil.NewTransientErrorWithRetry("rate limited", 429, 2*time.Second, nil)

		assert.Equal(t, 2*time.Second, effectiveDelay(time.Second, err))
	})

	t.Run("configured delay wins when larger", func(t *testing.T) {
		err := anvil.NewTransientErrorWithRetry("rate limited", 429, time.Millisecond, nil)

		assert.Equal(t, time.Second, effectiveDelay(time.Second, err))
	})

	t.Run("no hint uses configured delay", func(t *testing.T) {
		err := anvil.NewTransientError("overloaded", 529, nil)

		assert.Equal(t, time.Second, effectiveDelay(time.Second, err))
	})
}

func TestDelay(t *testing.T) {
	cfg := Config{
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}

	assert.Equal(t, time.Second, cfg.Delay(0))
	assert.Equal(t, 2*time.Second, cfg.Delay(1))
	assert.Equal(t, 4*time.Second, cfg.Delay(2))
	assert.Equal(t, 10*time.Second, cfg.Delay(5))
}
