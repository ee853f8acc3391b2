package input

import (
	"sync"
	"time"
)

// Debouncer accepts a press only when the previous accepted press is at least gap old
type Debouncer struct {
	mu   sync.Mutex
	gap  time.Duration
	last time.Time
	now  func() time.Time
}

// NewDebouncer creates a debouncer with the given minimum gap
func NewDebouncer(gap time.Duration) *Debouncer {
	return &Debouncer{gap: gap, now: time.Now}
}

// Allow reports whether a press at the current time is accepted
func (d *Debouncer) Allow() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if !d.last.IsZero() && now.Sub(d.last) <= d.gap {
		return false
	}
	d.last = now
	return true
}
