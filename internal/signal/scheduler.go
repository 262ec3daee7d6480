package signal

import "time"

// Default poll cadence: changes are checked at 64 Hz, redraws capped at 24 Hz.
const (
	DefaultCheck     = time.Second / 64
	DefaultMinRedraw = time.Second / 24
)

// Scheduler decides on the render goroutine when a redraw is due.
// It is not safe for concurrent use.
type Scheduler struct {
	changes    *Counter
	minRedraw  time.Duration
	lastSeen   uint64
	lastRedraw time.Time
	redraws    uint64
}

// NewScheduler watches changes and dispatches at most one redraw per minRedraw.
func NewScheduler(changes *Counter, minRedraw time.Duration) *Scheduler {
	return &Scheduler{
		changes:   changes,
		minRedraw: minRedraw,
	}
}

// Poll is called once per check period. It returns true when the change
// counter moved since the last dispatched redraw and the redraw cap allows it.
func (s *Scheduler) Poll(now time.Time) bool {
	changed, seen := s.changes.Changed(s.lastSeen)
	if !changed {
		return false
	}
	if !s.lastRedraw.IsZero() && now.Sub(s.lastRedraw) < s.minRedraw {
		return false
	}
	s.lastSeen = seen
	s.lastRedraw = now
	s.redraws++
	return true
}

// Redraws returns how many redraws have been dispatched.
func (s *Scheduler) Redraws() uint64 {
	return s.redraws
}
