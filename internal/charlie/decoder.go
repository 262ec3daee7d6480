// Package charlie turns pin and direction register snapshots of one I/O port
// into LED activations.
//
// The mutators run on the emulator goroutine, synchronously with the firmware
// touching its port. Observers on other goroutines only ever read single
// atomic fields; a torn view across fields costs at most one stale frame.
package charlie

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/sweeney/binw2-sim/internal/pov"
	"github.com/sweeney/binw2-sim/internal/signal"
	"github.com/sweeney/binw2-sim/internal/topology"
)

// Decode computes the charlieplex state: the levels of the output lines in
// the low nibble and the direction of the four charlieplexed lines in the
// high nibble.
func Decode(pin, dir byte) byte {
	return (pin & dir & 0x0F) | ((dir << 4) & 0xF0)
}

// Registers is a point-in-time view of the port as the decoder saw it.
type Registers struct {
	Pin   byte
	Dir   byte
	State byte
}

// Stats counts decoder activity since startup.
type Stats struct {
	StateChanges uint64
	Arms         uint64
}

// Decoder is the pin state register plus the edge-triggered decoder.
type Decoder struct {
	table   *topology.Table
	buf     *pov.Buffer
	changes *signal.Counter

	pin   atomic.Uint32
	dir   atomic.Uint32
	state atomic.Uint32

	stateChanges atomic.Uint64
	arms         atomic.Uint64

	charlie    []int // slots of charlieplexed entries
	indicators []int // slots of indicator entries
}

// NewDecoder binds a decoder to a table, the buffer it arms and the counter
// it notifies. The buffer must have one slot per table entry.
func NewDecoder(table *topology.Table, buf *pov.Buffer, changes *signal.Counter) (*Decoder, error) {
	if table == nil || buf == nil || changes == nil {
		return nil, errors.New("charlie: decoder needs a table, a buffer and a change counter")
	}
	if buf.Len() != table.Len() {
		return nil, fmt.Errorf("charlie: buffer has %d slots, table has %d entries", buf.Len(), table.Len())
	}

	d := &Decoder{
		table:   table,
		buf:     buf,
		changes: changes,
	}
	for i, e := range table.Entries() {
		switch e.Kind {
		case topology.Charlieplexed:
			d.charlie = append(d.charlie, i)
		case topology.Indicator:
			d.indicators = append(d.indicators, i)
		}
	}
	return d, nil
}

// OnPinsChanged replaces the pin value and re-evaluates the display.
func (d *Decoder) OnPinsChanged(v byte) {
	d.pin.Store(uint32(v))
	d.evaluate()
}

// OnDirectionChanged replaces the direction value and re-evaluates the display.
func (d *Decoder) OnDirectionChanged(v byte) {
	d.dir.Store(uint32(v))
	d.evaluate()
}

func (d *Decoder) evaluate() {
	pin := byte(d.pin.Load())
	dir := byte(d.dir.Load())

	changed := d.indicate(pin, dir)

	state := Decode(pin, dir)
	if uint32(state) != d.state.Load() {
		d.state.Store(uint32(state))
		d.stateChanges.Add(1)
		for _, slot := range d.charlie {
			if d.table.Entry(slot).Pattern == state {
				d.buf.Arm(slot)
				d.arms.Add(1)
			}
		}
		changed = true
	}

	if changed {
		d.changes.Notify()
	}
}

// indicate applies the direct-drive rule to indicator LEDs and reports
// whether any of them switched.
func (d *Decoder) indicate(pin, dir byte) bool {
	var switched bool
	for _, slot := range d.indicators {
		e := d.table.Entry(slot)
		on := dir&e.Mask() != 0 && (pin&e.Mask() != 0) == e.Level
		if d.buf.Held(slot) != on {
			switched = true
		}
		d.buf.Hold(slot, on)
	}
	return switched
}

// Registers returns the last pin, direction and decoded state.
func (d *Decoder) Registers() Registers {
	return Registers{
		Pin:   byte(d.pin.Load()),
		Dir:   byte(d.dir.Load()),
		State: byte(d.state.Load()),
	}
}

// Stats returns decoder counters.
func (d *Decoder) Stats() Stats {
	return Stats{
		StateChanges: d.stateChanges.Load(),
		Arms:         d.arms.Load(),
	}
}
