package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy defines the interface for different backoff strategies
type BackoffStrategy interface {
	// NextDelay returns the delay before the given attempt (1-based)
	NextDelay(attempt int) time.Duration
	// Reset resets the backoff strategy to initial state
	Reset()
}

// ExponentialBackoff implements exponential backoff with jitter.
// The raw delay for attempt n (1-based) is min(MaxDelay, BaseDelay*2^(n-1)),
// scaled by a uniform factor in [0.5, 1.0) to avoid synchronized retry storms.
type ExponentialBackoff struct {
	// BaseDelay is the initial delay duration
	BaseDelay time.Duration
	// MaxDelay caps the raw delay before jitter
	MaxDelay time.Duration
	// Rand is the jitter source; nil means the global math/rand source.
	// Tests inject a fixed source for deterministic delays.
	Rand func() float64
}

// DefaultExponentialBackoff returns a backoff with the default retry policy
func DefaultExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay: 1 * time.Second,
		MaxDelay:  60 * time.Second,
	}
}

// RawDelay returns the unjittered delay for the given attempt (1-based)
func (eb *ExponentialBackoff) RawDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := float64(eb.BaseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(eb.MaxDelay) {
		delay = float64(eb.MaxDelay)
	}
	return time.Duration(delay)
}

// NextDelay calculates the next delay with exponential backoff and jitter
func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	raw := eb.RawDelay(attempt)
	if raw <= 0 {
		return 0
	}

	random := eb.Rand
	if random == nil {
		random = rand.Float64
	}
	return time.Duration(float64(raw) * (0.5 + random()*0.5))
}

// Reset resets the backoff to initial state
func (eb *ExponentialBackoff) Reset() {}

// ConstantBackoff implements constant delay backoff
type ConstantBackoff struct {
	Delay time.Duration
}

// NextDelay returns a constant delay
func (cb *ConstantBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return cb.Delay
}

// Reset resets the backoff (no-op for constant backoff)
func (cb *ConstantBackoff) Reset() {}

// Wait waits for the specified duration or until context is cancelled
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
