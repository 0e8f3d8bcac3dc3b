package indexer

import (
	"sync"
	"time"
)

// Debouncer coalesces a burst of Trigger calls into a single onFire
// call after delay has elapsed since the last trigger, the same shape
// BeadsLog's daemon file watcher uses to avoid re-running expensive
// work once per individual filesystem event.
type Debouncer struct {
	delay  time.Duration
	onFire func()

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a Debouncer that calls onFire delay after the
// most recent Trigger.
func NewDebouncer(delay time.Duration, onFire func()) *Debouncer {
	return &Debouncer{delay: delay, onFire: onFire}
}

// Trigger (re)starts the countdown to onFire.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.onFire)
}

// Cancel stops a pending countdown, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
