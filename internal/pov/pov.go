// Package pov holds the persistence-of-vision buffer: one countdown per LED,
// armed by the decoder on the emulator goroutine and decayed by the renderer.
//
// Each slot is a pair of independent atomics. There is no lock and no
// cross-slot consistency: a renderer racing an arm may show the LED one
// frame late, never crash or block the emulator.
package pov

import "sync/atomic"

// DefaultHold is the number of rendered frames an armed LED stays lit.
const DefaultHold = 1

// Buffer is a fixed-size set of hold counters indexed by slot.
type Buffer struct {
	hold     int32
	counters []atomic.Int32
	held     []atomic.Bool
}

// New returns a buffer with n slots. hold <= 0 selects DefaultHold.
func New(n int, hold int) *Buffer {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &Buffer{
		hold:     int32(hold),
		counters: make([]atomic.Int32, n),
		held:     make([]atomic.Bool, n),
	}
}

// Len returns the number of slots.
func (b *Buffer) Len() int {
	return len(b.counters)
}

// HoldTicks returns the hold duration in frames.
func (b *Buffer) HoldTicks() int {
	return int(b.hold)
}

// Arm sets a slot's counter to the hold duration.
func (b *Buffer) Arm(slot int) {
	b.counters[slot].Store(b.hold)
}

// Hold pins a slot lit (on) or forces it dark (off). A held slot is re-armed
// on every Tick instead of decaying.
func (b *Buffer) Hold(slot int, on bool) {
	b.held[slot].Store(on)
	if on {
		b.counters[slot].Store(b.hold)
	} else {
		b.counters[slot].Store(0)
	}
}

// Held reports whether a slot is pinned lit.
func (b *Buffer) Held(slot int) bool {
	return b.held[slot].Load()
}

// Lit reports whether a slot would be drawn lit, without decaying it.
func (b *Buffer) Lit(slot int) bool {
	return b.counters[slot].Load() > 0
}

// Counter returns a slot's current countdown.
func (b *Buffer) Counter(slot int) int {
	return int(b.counters[slot].Load())
}

// Tick renders one frame: yield is called for every lit slot, then the slot
// decays by one. Held slots are re-armed instead. If the emulator re-arms a
// slot between the load and the decrement, the re-arm wins.
func (b *Buffer) Tick(yield func(slot int)) {
	for i := range b.counters {
		c := &b.counters[i]
		v := c.Load()
		if v <= 0 {
			continue
		}
		if yield != nil {
			yield(i)
		}
		if b.held[i].Load() {
			c.CompareAndSwap(v, b.hold)
			continue
		}
		c.CompareAndSwap(v, v-1)
	}
}
