// Package debounce collapses bursts of values into a single emission after a quiet period.
package debounce

import (
	"errors"
	"sync"
	"time"

	"github.com/NazishAyoob/AutoCompleteInput/pkg/clock"
)

// ErrNegativeDelay is returned by New for a delay below zero.
var ErrNegativeDelay = errors.New("debounce: delay must not be negative")

// Debouncer emits the latest pushed value once delay has passed without another Push.
// It is safe for concurrent use; emit runs on the clock's callback goroutine.
type Debouncer[T any] struct {
	clock clock.Clock
	delay time.Duration
	emit  func(T)

	mu      sync.Mutex
	timer   clock.Timer
	value   T
	gen     uint64
	pending bool
	closed  bool
}

// Option customizes a Debouncer.
type Option func(*options)

type options struct {
	clock clock.Clock
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// New creates a Debouncer that calls emit with the settled value.
func New[T any](delay time.Duration, emit func(T), opts ...Option) (*Debouncer[T], error) {
	if delay < 0 {
		return nil, ErrNegativeDelay
	}
	o := options{clock: clock.Real{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Debouncer[T]{
		clock: o.clock,
		delay: delay,
		emit:  emit,
	}, nil
}

// Push records v as the latest value and restarts the quiet period.
// Any emission still pending for an earlier value is cancelled.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.value = v
	d.pending = true

	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
}

// fire emits the pending value if gen still identifies the latest Push.
// A timer whose Stop lost the race with its own firing is filtered out here.
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.closed || !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	v := d.value
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	d.emit(v)
}

// Flush emits the pending value immediately, if there is one.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if d.closed || !d.pending {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	v := d.value
	d.pending = false
	d.gen++
	d.mu.Unlock()

	d.emit(v)
}

// Pending reports whether an emission is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Close cancels any pending emission. Later Push and Flush calls do nothing.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
