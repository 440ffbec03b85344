package embedder

import (
	"context"
	"time"
)

// Retry configuration defaults.
const (
	maxRetries        = 3
	initialBackoff    = 100 * time.Millisecond
	maxBackoff        = 5 * time.Second
	backoffMultiplier = 2.0
)

// retryPolicy configures exponential backoff for provider calls.
type retryPolicy struct {
	Attempts   int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		Attempts:   maxRetries,
		BaseDelay:  initialBackoff,
		MaxDelay:   maxBackoff,
		Multiplier: backoffMultiplier,
	}
}

// withRetry runs fn with exponential backoff. Context cancellation stops
// retrying immediately and wins over the last provider error.
func withRetry[T any](ctx context.Context, policy retryPolicy, fn func() (T, error)) (T, error) {
	var lastErr error
	var zero T
	delay := policy.BaseDelay

	for attempt := 0; attempt < policy.Attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		if attempt < policy.Attempts-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * policy.Multiplier)
				if delay > policy.MaxDelay {
					delay = policy.MaxDelay
				}
			}
		}
	}

	return zero, lastErr
}
