package input

import (
	"sync"
	"time"
)

// JitterBucket is the histogram resolution
const JitterBucket = 100 * time.Microsecond

// Jitter measures how far sample intervals stray from the nominal period
type Jitter struct {
	mu        sync.Mutex
	period    time.Duration
	last      time.Time
	max       time.Duration
	histogram []int64
}

// NewJitter tracks deviations from period in n buckets; the last bucket collects overflow
func NewJitter(period time.Duration, n int) *Jitter {
	return &Jitter{period: period, histogram: make([]int64, n)}
}

// Observe records a sample time. The first observation only sets the reference
func (j *Jitter) Observe(now time.Time) time.Duration {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.last.IsZero() {
		j.last = now
		return 0
	}
	diff := now.Sub(j.last) - j.period
	j.last = now
	if diff < 0 {
		diff = -diff
	}

	if diff > j.max {
		j.max = diff
	}
	idx := int(diff / JitterBucket)
	if idx >= len(j.histogram) {
		idx = len(j.histogram) - 1
	}
	j.histogram[idx]++
	return diff
}

// Max returns the largest deviation seen
func (j *Jitter) Max() time.Duration {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.max
}

// Histogram returns a copy of the bucket counts
func (j *Jitter) Histogram() []int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]int64, len(j.histogram))
	copy(out, j.histogram)
	return out
}

// Reset clears statistics and the reference time
func (j *Jitter) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.last = time.Time{}
	j.max = 0
	clear(j.histogram)
}
