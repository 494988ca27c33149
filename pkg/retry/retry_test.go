package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "jirascraper/pkg/errors"
	"jirascraper/pkg/logger"
)

func TestExponentialBackoffRawDelay(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay: 1 * time.Second,
		MaxDelay:  60 * time.Second,
	}

	tests := []struct {
		attempt     int
		expected    time.Duration
		description string
	}{
		{1, 1 * time.Second, "First attempt"},
		{2, 2 * time.Second, "Second attempt"},
		{3, 4 * time.Second, "Third attempt"},
		{4, 8 * time.Second, "Fourth attempt"},
		{5, 16 * time.Second, "Fifth attempt"},
		{6, 32 * time.Second, "Sixth attempt"},
		{7, 60 * time.Second, "Seventh attempt (capped)"},
		{8, 60 * time.Second, "Eighth attempt (still capped)"},
	}

	var prev time.Duration
	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			delay := backoff.RawDelay(test.attempt)
			if delay != test.expected {
				t.Errorf("Expected raw delay %v, got %v", test.expected, delay)
			}
			if delay < prev {
				t.Errorf("Raw delay decreased: %v after %v", delay, prev)
			}
			prev = delay
		})
	}
}

func TestExponentialBackoffJitterBand(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay: 1 * time.Second,
		MaxDelay:  60 * time.Second,
	}

	// Jittered delay must stay within [0.5, 1.0) of the raw delay
	for attempt := 1; attempt <= 8; attempt++ {
		raw := backoff.RawDelay(attempt)
		for i := 0; i < 20; i++ {
			delay := backoff.NextDelay(attempt)
			if delay < raw/2 || delay > raw {
				t.Fatalf("Attempt %d: delay %v outside [%v, %v]", attempt, delay, raw/2, raw)
			}
		}
	}
}

func TestExponentialBackoffInjectedRand(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay: 2 * time.Second,
		MaxDelay:  60 * time.Second,
		Rand:      func() float64 { return 1.0 },
	}

	// With the jitter source pinned to 1.0 the delay equals the raw delay
	if delay := backoff.NextDelay(3); delay != 8*time.Second {
		t.Errorf("Expected 8s with pinned jitter, got %v", delay)
	}

	backoff.Rand = func() float64 { return 0.0 }
	if delay := backoff.NextDelay(3); delay != 4*time.Second {
		t.Errorf("Expected 4s with zero jitter draw, got %v", delay)
	}
}

func TestRetryWithSuccess(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}

	err := Do(op, cfg)
	if err != nil {
		t.Errorf("Expected success after retries, got error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithMaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		return errors.New("persistent error")
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}

	err := Do(op, cfg)
	if err == nil {
		t.Error("Expected error when max attempts exceeded")
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithNonRetryableError(t *testing.T) {
	attempts := 0
	clientErr := &errs.Error{
		Type:    errs.ErrorTypeClient,
		Message: "bad request",
		Code:    400,
	}

	op := func() error {
		attempts++
		return clientErr
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}

	err := Do(op, cfg)
	if err != clientErr {
		t.Errorf("Expected client error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt (no retry for client error), got %d", attempts)
	}
}

func TestRetryHonorsRetryAfterHint(t *testing.T) {
	rateLimited := &errs.Error{
		Type:       errs.ErrorTypeRateLimit,
		Message:    "rate limit exceeded",
		Code:       429,
		RetryAfter: 5 * time.Second,
	}

	cfg := &Config{
		MaxAttempts: 2,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}

	// Capture the delay instead of sleeping it out
	var observed time.Duration
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		observed = delay
	}

	ctx, cancel := context.WithCancel(context.Background())
	cfg.Context = ctx

	attempts := 0
	op := func() error {
		attempts++
		if attempts == 1 {
			// Cancel so the 6s wait aborts immediately after being observed
			go func() {
				time.Sleep(20 * time.Millisecond)
				cancel()
			}()
			return rateLimited
		}
		return nil
	}

	_ = Do(op, cfg)

	if observed != 6*time.Second {
		t.Errorf("Expected Retry-After hint of 5s to produce a 6s wait, got %v", observed)
	}
}

func TestRetryWithContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	op := func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 100 * time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     ctx,
		Logger:      logger.NewTestLogger(),
	}

	err := Do(op, cfg)
	if err == nil {
		t.Error("Expected error when context cancelled")
	}
	if attempts > 3 {
		t.Errorf("Expected at most 3 attempts before cancellation, got %d", attempts)
	}
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	op := func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", errors.New("temporary error")
		}
		return "success", nil
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}

	result, err := DoWithResult(op, cfg)
	if err != nil {
		t.Errorf("Expected success, got error: %v", err)
	}
	if result != "success" {
		t.Errorf("Expected 'success', got '%s'", result)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
}
