package input

import (
	"context"
	"sync/atomic"
)

// Queue is the bounded hand-off between the sampling producer and its consumers.
// Offers never block; a full queue drops the sample and counts it as lost
type Queue struct {
	ch   chan Sample
	lost atomic.Int64
}

// NewQueue creates a queue holding up to n samples
func NewQueue(n int) *Queue {
	return &Queue{ch: make(chan Sample, n)}
}

// Offer enqueues s, returning false if the queue was full
func (q *Queue) Offer(s Sample) bool {
	select {
	case q.ch <- s:
		return true
	default:
		q.lost.Add(1)
		return false
	}
}

// Take blocks for the next sample or until ctx is done
func (q *Queue) Take(ctx context.Context) (Sample, error) {
	select {
	case s := <-q.ch:
		return s, nil
	case <-ctx.Done():
		return Sample{}, ctx.Err()
	}
}

// Drain discards queued samples, returning how many were dropped
func (q *Queue) Drain() int {
	n := 0
	for {
		select {
		case <-q.ch:
			n++
		default:
			return n
		}
	}
}

// Len returns the number of queued samples
func (q *Queue) Len() int { return len(q.ch) }

// Cap returns the queue capacity
func (q *Queue) Cap() int { return cap(q.ch) }

// Lost returns the number of dropped offers
func (q *Queue) Lost() int64 { return q.lost.Load() }

// ResetLost clears the dropped counter
func (q *Queue) ResetLost() { q.lost.Store(0) }
