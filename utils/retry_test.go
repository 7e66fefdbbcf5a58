package utils

import (
	"errors"
	"io"
	"testing"
	"time"
)

func retryConfig(attempts int) *RetryConfig {
	return &RetryConfig{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		Logger:      NewLoggerTo(io.Discard),
	}
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	calls := 0
	err := retryConfig(3).Do("transient", func() error {
		calls++
		if calls < 2 {
			return errors.New("temporarily down")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls: got %d, want 2", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	sentinel := errors.New("permanently down")
	calls := 0
	err := retryConfig(3).Do("doomed", func() error {
		calls++
		return sentinel
	})

	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("expected the last error in the chain, got %v", err)
	}
}

func TestRetryDelayCap(t *testing.T) {
	r := &RetryConfig{BaseDelay: time.Second, MaxDelay: 4 * time.Second}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 4 * time.Second}, // capped
		{6, 4 * time.Second},
	}
	for _, tt := range tests {
		if got := r.delayFor(tt.attempt); got != tt.want {
			t.Errorf("delayFor(%d) = %v; want %v", tt.attempt, got, tt.want)
		}
	}

	uncapped := &RetryConfig{BaseDelay: time.Second}
	if got := uncapped.delayFor(4); got != 8*time.Second {
		t.Errorf("uncapped delayFor(4) = %v; want 8s", got)
	}
}
