// Package status provides a thread-safe view of the simulator for the HTTP
// page and MQTT system events. The render loop writes it once per frame.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/binw2-sim/internal/board"
	"github.com/sweeney/binw2-sim/internal/charlie"
)

// Config contains simulator configuration for display.
type Config struct {
	UI          string
	MCU         string
	FrequencyHz uint64
	HoldTicks   int
	PollMs      int64
	RedrawMs    int64
	Broker      string
	HTTPAddr    string
}

// Snapshot is a point-in-time view of simulator state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Frame          board.Frame
	Registers      charlie.Registers
	Stats          charlie.Stats
	Changes        uint64
	Redraws        uint64
	ButtonRequests uint64
	MQTTConnected  bool
	StartTime      time.Time
	Now            time.Time
	Config         Config
}

// Uptime returns the duration since the simulator started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable simulator state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records the last rendered frame and the decoder counters.
// Called from the render loop after every frame. frame.Lit must not be
// modified afterwards.
func (t *Tracker) Update(frame board.Frame, regs charlie.Registers, stats charlie.Stats, changes, redraws uint64) {
	t.mu.Lock()
	t.snap.Frame = frame
	t.snap.Registers = regs
	t.snap.Stats = stats
	t.snap.Changes = changes
	t.snap.Redraws = redraws
	t.mu.Unlock()
}

// SetButtonRequests records how many button presses have been requested.
func (t *Tracker) SetButtonRequests(n uint64) {
	t.mu.Lock()
	t.snap.ButtonRequests = n
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the simulator state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
