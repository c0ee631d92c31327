// Package countdown derives a smooth remaining-time signal from a
// server-issued duration. Every tick recomputes from the absolute deadline,
// never from accumulated deltas, so the signal cannot drift.
package countdown

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Sample is one observation of the running countdown. Fraction is in [0, 1]
// and monotonically non-increasing between resets.
type Sample struct {
	Fraction  float64
	Remaining time.Duration
}

// Option configures a Countdown.
type Option func(*Countdown)

// WithInterval sets the tick cadence. Default 100ms.
func WithInterval(d time.Duration) Option {
	return func(c *Countdown) { c.interval = d }
}

// WithBuffer sets the sample channel capacity. Default 64.
func WithBuffer(n int) Option {
	return func(c *Countdown) { c.buffer = n }
}

// Countdown produces a restartable sequence of fractional samples until the
// deadline passes or the countdown is paused. A paused countdown holds its
// remaining time; wall-clock progression while paused does not count.
type Countdown struct {
	clock    clockwork.Clock
	interval time.Duration
	buffer   int
	out      chan Sample

	mu       sync.Mutex
	total    time.Duration
	deadline time.Time
	frozen   time.Duration
	paused   bool
	cancel   chan struct{} // non-nil while a tick loop is live
}

// New creates a stopped countdown.
func New(clock clockwork.Clock, opts ...Option) *Countdown {
	c := &Countdown{
		clock:    clock,
		interval: 100 * time.Millisecond,
		buffer:   64,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.out = make(chan Sample, c.buffer)
	return c
}

// Samples returns the tick stream. When the consumer lags, older samples are
// dropped in favor of the latest.
func (c *Countdown) Samples() <-chan Sample {
	return c.out
}

// Reset discards any running sequence and starts a fresh one with the given
// remaining and total duration. With paused set, the countdown starts frozen
// at the corresponding fraction. A non-positive total stops the countdown
// entirely (untimed phase).
func (c *Countdown) Reset(remaining, total time.Duration, paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.total = total
	if total <= 0 {
		c.paused = false
		return
	}

	if paused {
		c.paused = true
		c.frozen = clampRemaining(remaining, total)
		c.emit(c.sampleOf(c.frozen))
		return
	}

	c.paused = false
	c.startLocked(remaining)
}

// Pause freezes the countdown at its current remaining time.
func (c *Countdown) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel == nil || c.paused {
		return
	}
	c.frozen = clampRemaining(c.deadline.Sub(c.clock.Now()), c.total)
	c.stopLocked()
	c.paused = true
	c.emit(c.sampleOf(c.frozen))
}

// Resume re-derives the deadline from the remaining time captured at pause
// and continues ticking.
func (c *Countdown) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.paused {
		return
	}
	c.paused = false
	c.startLocked(c.frozen)
}

// Stop cancels the running sequence. No tick is observed after Stop returns.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.paused = false
}

func (c *Countdown) startLocked(remaining time.Duration) {
	remaining = clampRemaining(remaining, c.total)
	c.deadline = c.clock.Now().Add(remaining)

	cancel := make(chan struct{})
	c.cancel = cancel
	go c.run(c.deadline, c.total, cancel)
}

func (c *Countdown) stopLocked() {
	if c.cancel != nil {
		close(c.cancel)
		c.cancel = nil
	}
}

// run ticks until cancelled or expired. Remaining time is recomputed from
// the absolute deadline on every tick.
func (c *Countdown) run(deadline time.Time, total time.Duration, cancel chan struct{}) {
	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-ticker.Chan():
			// A tick can already be queued when the countdown is cancelled;
			// never emit past cancellation.
			select {
			case <-cancel:
				return
			default:
			}
			remaining := deadline.Sub(c.clock.Now())
			if remaining <= 0 {
				c.emit(Sample{Fraction: 0, Remaining: 0})
				c.mu.Lock()
				if c.cancel == cancel {
					c.cancel = nil
				}
				c.mu.Unlock()
				return
			}
			c.emit(sampleOf(remaining, total))
		}
	}
}

// emit delivers a sample without blocking; a slow consumer loses the oldest
// sample, never the newest.
func (c *Countdown) emit(s Sample) {
	select {
	case c.out <- s:
	default:
		select {
		case <-c.out:
		default:
		}
		select {
		case c.out <- s:
		default:
		}
	}
}

func (c *Countdown) sampleOf(remaining time.Duration) Sample {
	return sampleOf(remaining, c.total)
}

func sampleOf(remaining, total time.Duration) Sample {
	f := float64(remaining) / float64(total)
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return Sample{Fraction: f, Remaining: remaining}
}

func clampRemaining(remaining, total time.Duration) time.Duration {
	if remaining < 0 {
		return 0
	}
	if remaining > total {
		return total
	}
	return remaining
}
