package engine

import "sync/atomic"

// Clock is a monotonic logical clock.
//
// The engine stamps every accepted snapshot and every effect outcome with a
// strictly increasing seq, so journal order never depends on wall time.
// Lane workers stamp outcomes concurrently, hence the atomic.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at start. Used to resume a journal.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current value without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
