package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration coalesces the burst of events editors produce when
// saving a layout file.
const DefaultDebounceDuration = 150 * time.Millisecond

// Debouncer runs the most recently triggered function once no trigger has
// arrived for its duration.
type Debouncer struct {
	duration time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer returns a debouncer; a non-positive duration selects
// DefaultDebounceDuration.
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounceDuration
	}
	return &Debouncer{duration: d}
}

// Duration returns the quiet period.
func (d *Debouncer) Duration() time.Duration {
	return d.duration
}

// Trigger (re)starts the quiet period. fn replaces any pending function.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Cancel drops the pending function, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
