package debounce

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

const delay = 100 * time.Millisecond

type call struct {
	key   string
	value float64
}

type recorder struct {
	mu    sync.Mutex
	calls []call
	ch    chan call
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan call, 16)}
}

func (r *recorder) sink(key string, value float64) {
	r.mu.Lock()
	r.calls = append(r.calls, call{key, value})
	r.mu.Unlock()
	r.ch <- call{key, value}
}

func (r *recorder) recv(t *testing.T) call {
	t.Helper()
	select {
	case c := <-r.ch:
		return c
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for a forwarded call")
		return call{}
	}
}

func (r *recorder) expectNone(t *testing.T) {
	t.Helper()
	select {
	case c := <-r.ch:
		t.Fatalf("expected nothing forwarded, got %+v", c)
	case <-time.After(200 * time.Millisecond):
	}
}

func notNaN(v float64) bool { return !math.IsNaN(v) }

func TestDebouncer_BurstForwardsOnlyLatestValue(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rec := newRecorder()
	d := New(fc, delay, rec.sink, WithFilter(notNaN))
	defer d.Close()

	d.Schedule("goal", 3)
	d.Schedule("goal", 7)

	fc.BlockUntil(1)
	fc.Advance(delay)

	got := rec.recv(t)
	if got.key != "goal" || got.value != 7 {
		t.Fatalf("want goal=7 forwarded, got %+v", got)
	}
	rec.expectNone(t)
}

func TestDebouncer_DelayRestartsOnEveryCall(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rec := newRecorder()
	d := New(fc, delay, rec.sink)
	defer d.Close()

	d.Schedule("goal", 3)
	fc.BlockUntil(1)
	fc.Advance(delay / 2)

	d.Schedule("goal", 7)
	fc.BlockUntil(1)
	fc.Advance(delay / 2)
	// Only half the restarted delay has elapsed.
	rec.expectNone(t)

	fc.Advance(delay / 2)
	got := rec.recv(t)
	if got.value != 7 {
		t.Fatalf("want restarted delay to forward 7, got %+v", got)
	}
}

func TestDebouncer_InvalidValueForwardsNothing(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rec := newRecorder()
	d := New(fc, delay, rec.sink, WithFilter(notNaN))
	defer d.Close()

	d.Schedule("goal", math.NaN())
	fc.Advance(delay * 2)

	rec.expectNone(t)
}

func TestDebouncer_DistinctKeysDoNotCoalesce(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rec := newRecorder()
	d := New(fc, delay, rec.sink)
	defer d.Close()

	d.Schedule("goal", 13)
	d.Schedule("teamTime", 60)

	fc.BlockUntil(2)
	fc.Advance(delay)

	seen := map[string]float64{}
	for i := 0; i < 2; i++ {
		c := rec.recv(t)
		seen[c.key] = c.value
	}
	if seen["goal"] != 13 || seen["teamTime"] != 60 {
		t.Fatalf("want both keys forwarded independently, got %v", seen)
	}
}

func TestDebouncer_CloseCancelsPending(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rec := newRecorder()
	d := New(fc, delay, rec.sink)

	d.Schedule("goal", 3)
	fc.BlockUntil(1)
	d.Close()

	fc.Advance(delay * 2)
	rec.expectNone(t)

	// Scheduling after close is also inert.
	d.Schedule("goal", 9)
	fc.Advance(delay * 2)
	rec.expectNone(t)
}
