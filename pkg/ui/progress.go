package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// ProgressDisplay tracks and renders scrape progress on a single
// terminal line. Safe for concurrent use.
type ProgressDisplay struct {
	mu        sync.Mutex
	total     int
	scanned   int
	emitted   int
	skipped   int
	startTime time.Time
	active    bool
}

// NewProgressDisplay creates a progress display for a run
func NewProgressDisplay() *ProgressDisplay {
	return &ProgressDisplay{startTime: time.Now()}
}

// Start begins showing progress with the reported matching total
func (p *ProgressDisplay) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.active = true
	p.startTime = time.Now()
	p.printProgress()
}

// SetTotal updates the total; servers may refine it between pages
func (p *ProgressDisplay) SetTotal(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
}

// Update records newly scanned issues for the current page
func (p *ProgressDisplay) Update(scanned, emitted, skipped int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scanned = scanned
	p.emitted = emitted
	p.skipped = skipped
	if p.active {
		p.printProgress()
	}
}

// Finish ends the progress line and prints a summary
func (p *ProgressDisplay) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return
	}
	p.active = false
	if !quietMode {
		fmt.Println()
	}
	elapsed := time.Since(p.startTime).Round(time.Second)
	PrintSuccess(fmt.Sprintf("Scraped %d issues in %s (%d skipped)", p.emitted, elapsed, p.skipped))
}

// printProgress renders the current state. Caller must hold the lock.
func (p *ProgressDisplay) printProgress() {
	if quietMode {
		return
	}
	var bar string
	if p.total > 0 {
		const width = 30
		filled := p.scanned * width / p.total
		if filled > width {
			filled = width
		}
		bar = Green(strings.Repeat("━", filled)) + Dim(strings.Repeat("─", width-filled))
		bar = fmt.Sprintf("%s %d/%d", bar, p.scanned, p.total)
	} else {
		bar = fmt.Sprintf("%d issues", p.scanned)
	}

	elapsed := time.Since(p.startTime).Seconds()
	var rate float64
	if elapsed > 0 {
		rate = float64(p.scanned) / elapsed
	}

	fmt.Printf("\r%s %s %s %s",
		Cyan("Scraping"),
		bar,
		Yellow(fmt.Sprintf("%.1f/s", rate)),
		Dim(fmt.Sprintf("emitted %d", p.emitted)),
	)
}
