package engine

import "sync/atomic"

// Clock is the monotonic logical clock that stamps events.
//
// Every event of a session gets a strictly increasing seq, across requests
// and reshuffles. Replay of the same request sequence yields the same seqs.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
