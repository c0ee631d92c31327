// Package debounce coalesces bursts of keyed calls into single trailing-edge
// invocations carrying only the latest value.
package debounce

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Sink receives the surviving value of a burst, once per quiet period.
type Sink[T any] func(key string, value T)

// Option configures a Debouncer.
type Option[T any] func(*Debouncer[T])

// WithFilter installs a validity predicate. Values failing it are dropped
// silently, never forwarded, never erroring.
func WithFilter[T any](valid func(T) bool) Option[T] {
	return func(d *Debouncer[T]) { d.valid = valid }
}

// Debouncer delays each keyed call and restarts the delay whenever the same
// key arrives again, so only the last value of a burst reaches the sink.
type Debouncer[T any] struct {
	clock clockwork.Clock
	delay time.Duration
	sink  Sink[T]
	valid func(T) bool

	mu     sync.Mutex
	timers map[string]clockwork.Timer
	closed bool
}

// New creates a debouncer with the given default delay.
func New[T any](clock clockwork.Clock, delay time.Duration, sink Sink[T], opts ...Option[T]) *Debouncer[T] {
	d := &Debouncer[T]{
		clock:  clock,
		delay:  delay,
		sink:   sink,
		timers: make(map[string]clockwork.Timer),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Schedule queues the value under the key with the default delay.
func (d *Debouncer[T]) Schedule(key string, value T) {
	d.ScheduleAfter(key, value, d.delay)
}

// ScheduleAfter queues the value under the key. A later call with the same
// key before the delay elapses supersedes this one and restarts the delay.
func (d *Debouncer[T]) ScheduleAfter(key string, value T, delay time.Duration) {
	if d.valid != nil && !d.valid(value) {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.timers[key] = d.clock.AfterFunc(delay, func() {
		d.fire(key, value)
	})
}

func (d *Debouncer[T]) fire(key string, value T) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	delete(d.timers, key)
	d.mu.Unlock()

	d.sink(key, value)
}

// Close cancels every pending delay. No sink call is made after Close
// returns.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
