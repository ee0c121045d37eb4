package engine

import "sync/atomic"

// Clock is the monotonic logical clock that stamps a run's steps.
//
// Steps carry a strictly increasing seq number from this clock, never a
// wall-clock time. This ensures:
// - Deterministic ordering across repeated runs
// - Golden traces that compare byte for byte
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// though each Run owns its clock and calls Next from one goroutine.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
