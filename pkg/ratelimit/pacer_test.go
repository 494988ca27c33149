package ratelimit

import (
	"testing"
	"time"
)

func TestFixedIntervalFirstWaitIsFree(t *testing.T) {
	p := NewFixedInterval(time.Hour)
	slept := time.Duration(0)
	p.sleep = func(d time.Duration) { slept += d }

	p.Wait()
	if slept != 0 {
		t.Errorf("Expected no sleep on first wait, slept %v", slept)
	}
}

func TestFixedIntervalEnforcesGap(t *testing.T) {
	p := NewFixedInterval(time.Hour)
	slept := time.Duration(0)
	p.sleep = func(d time.Duration) { slept += d }

	p.Wait()
	p.Wait()

	// Nearly the whole interval remains between back-to-back waits
	if slept < 59*time.Minute {
		t.Errorf("Expected close to an hour of sleep, got %v", slept)
	}
}

func TestFixedIntervalZeroIsNoop(t *testing.T) {
	p := NewFixedInterval(0)
	p.sleep = func(d time.Duration) {
		t.Errorf("Unexpected sleep of %v", d)
	}

	p.Wait()
	p.Wait()
	p.Wait()
}

func TestFixedIntervalReset(t *testing.T) {
	p := NewFixedInterval(time.Hour)
	slept := time.Duration(0)
	p.sleep = func(d time.Duration) { slept += d }

	p.Wait()
	p.Reset()
	p.Wait()

	if slept != 0 {
		t.Errorf("Expected no sleep after reset, slept %v", slept)
	}
}
