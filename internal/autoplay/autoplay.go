// Package autoplay advances the paging screen on a timer.
package autoplay

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultInterval is used when a non-positive interval is configured.
	DefaultInterval = 5 * time.Second
	// MinInterval keeps the catalog from being hammered.
	MinInterval = 500 * time.Millisecond
)

// Player tracks whether autoplay is running. It is read from the ticker
// goroutine and written from the UI thread, so it carries its own lock.
type Player struct {
	mu                 sync.Mutex
	paused             bool
	wasPlayingBeforeOp bool // playing when the outermost Pause(true) was called
	opDepth            int  // Pause(true) calls not yet resumed
	interval           time.Duration
}

// New creates a paused player. Autoplay only starts when the user asks.
func New(interval time.Duration) *Player {
	return &Player{paused: true, interval: clamp(interval)}
}

func clamp(interval time.Duration) time.Duration {
	if interval <= 0 {
		return DefaultInterval
	}
	if interval < MinInterval {
		return MinInterval
	}
	return interval
}

// TogglePlayPause flips between playing and paused.
func (p *Player) TogglePlayPause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = !p.paused
	p.wasPlayingBeforeOp = false
	p.opDepth = 0
}

// Pause stops autoplay. With forOperation set, the matching
// ResumeAfterOperation restarts it if it was playing at this point.
// Operations may overlap; autoplay resumes when the last one ends.
func (p *Player) Pause(forOperation bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if forOperation {
		if p.opDepth == 0 {
			p.wasPlayingBeforeOp = !p.paused
		}
		p.opDepth++
	}
	p.paused = true
}

// ResumeAfterOperation undoes one Pause(true).
func (p *Player) ResumeAfterOperation() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.opDepth == 0 {
		return
	}
	p.opDepth--
	if p.opDepth > 0 {
		return
	}
	if p.wasPlayingBeforeOp {
		p.paused = false
	}
	p.wasPlayingBeforeOp = false
}

// IsPaused reports whether autoplay is stopped.
func (p *Player) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Interval returns the time between automatic page changes.
func (p *Player) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

// SetInterval changes the interval. A running Run loop picks it up on its
// next tick.
func (p *Player) SetInterval(interval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.interval = clamp(interval)
}

// Run calls tick every interval while the player is not paused, until ctx
// is done. tick runs on Run's goroutine; callers marshal to the UI thread.
func (p *Player) Run(ctx context.Context, tick func()) {
	interval := p.Interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.IsPaused() {
				tick()
			}
			if next := p.Interval(); next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}
