package utils

import (
	"fmt"
	"time"
)

// RetryConfig holds the parameters for the retry strategy. MaxDelay caps
// the exponential growth so long snapshot downloads do not stall between
// late attempts; zero means uncapped.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Logger      *Logger
}

// Do executes fn, retrying with exponential back-off until it succeeds or
// MaxAttempts is exhausted.
func (r *RetryConfig) Do(operationName string, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < r.MaxAttempts {
			delay := r.delayFor(attempt)
			r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v — retrying in %v",
				operationName, attempt, r.MaxAttempts, lastErr, delay)
			time.Sleep(delay)
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, r.MaxAttempts, lastErr)
}

// delayFor doubles the base delay per completed attempt, capped at MaxDelay.
func (r *RetryConfig) delayFor(attempt int) time.Duration {
	delay := r.BaseDelay << (attempt - 1)
	if r.MaxDelay > 0 && delay > r.MaxDelay {
		return r.MaxDelay
	}
	return delay
}
