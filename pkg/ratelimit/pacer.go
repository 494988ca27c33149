package ratelimit

import (
	"sync"
	"time"
)

// Pacer spaces out successive requests. Unlike retry backoff it is fixed
// and unjittered: it exists for politeness, not failure handling.
type Pacer interface {
	// Wait blocks until the next request is allowed to start
	Wait()
	// Reset forgets the last request time
	Reset()
}

// FixedInterval enforces a minimum gap between consecutive requests.
// The first request passes immediately.
type FixedInterval struct {
	interval time.Duration
	last     time.Time
	mu       sync.Mutex

	// sleep is swappable for tests
	sleep func(time.Duration)
}

// NewFixedInterval creates a pacer with the given minimum gap
func NewFixedInterval(interval time.Duration) *FixedInterval {
	return &FixedInterval{
		interval: interval,
		sleep:    time.Sleep,
	}
}

// Wait blocks until at least the configured interval has passed since the
// previous Wait returned
func (p *FixedInterval) Wait() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.interval <= 0 {
		p.last = time.Now()
		return
	}

	if !p.last.IsZero() {
		if remaining := p.interval - time.Since(p.last); remaining > 0 {
			p.sleep(remaining)
		}
	}
	p.last = time.Now()
}

// Reset forgets the last request time so the next Wait passes immediately
func (p *FixedInterval) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = time.Time{}
}
