// Package signal provides the low-coordination counters used to hand
// events across the emulator/render goroutine boundary, and the poll
// scheduler that turns change counts into redraws.
package signal

import "sync/atomic"

// Counter is a monotonically increasing event count. One side calls Notify,
// the other remembers the last value it saw and asks Changed.
type Counter struct {
	n atomic.Uint64
}

// Notify records one event.
func (c *Counter) Notify() {
	c.n.Add(1)
}

// Load returns the current count.
func (c *Counter) Load() uint64 {
	return c.n.Load()
}

// Changed reports whether the count moved since lastSeen, and the value the
// caller should remember next.
func (c *Counter) Changed(lastSeen uint64) (bool, uint64) {
	now := c.n.Load()
	return now != lastSeen, now
}
