// Package board is the root context of the simulator core. It owns the
// wiring table, the POV buffer, the decoder and the two cross-goroutine
// counters, and exposes the operations each side of the simulator uses:
// the emulator goroutine only reaches the decoder through Attach, the render
// goroutine calls PollTick, RenderFrame and RequestButtonPress.
package board

import (
	"errors"
	"time"

	"github.com/sweeney/binw2-sim/internal/avr"
	"github.com/sweeney/binw2-sim/internal/charlie"
	"github.com/sweeney/binw2-sim/internal/pov"
	"github.com/sweeney/binw2-sim/internal/signal"
	"github.com/sweeney/binw2-sim/internal/topology"
)

// Config holds the render-side tuning knobs.
type Config struct {
	Hold      int           // frames an armed LED stays lit; 0 = pov.DefaultHold
	MinRedraw time.Duration // redraw cap; 0 = signal.DefaultMinRedraw
}

// Subscriber is anything the decoder can listen to, usually an *avr.Port.
type Subscriber interface {
	Subscribe(l avr.PortListener)
}

// Frame describes one rendered frame.
type Frame struct {
	Seq   uint64
	Time  time.Time
	State byte
	Lit   []topology.LED
}

// Board is the simulator core.
type Board struct {
	table   *topology.Table
	buf     *pov.Buffer
	decoder *charlie.Decoder
	changes signal.Counter
	buttons signal.Counter
	sched   *signal.Scheduler
	frames  uint64
}

// New builds a board for a validated table.
func New(table *topology.Table, cfg Config) (*Board, error) {
	if table == nil || table.Len() == 0 {
		return nil, errors.New("board: no topology")
	}
	if cfg.MinRedraw <= 0 {
		cfg.MinRedraw = signal.DefaultMinRedraw
	}

	b := &Board{
		table: table,
		buf:   pov.New(table.Len(), cfg.Hold),
	}
	dec, err := charlie.NewDecoder(table, b.buf, &b.changes)
	if err != nil {
		return nil, err
	}
	b.decoder = dec
	b.sched = signal.NewScheduler(&b.changes, cfg.MinRedraw)
	return b, nil
}

// Attach subscribes the decoder to a port's pin and direction changes.
func (b *Board) Attach(port Subscriber) {
	port.Subscribe(b.decoder)
}

// Table returns the wiring table.
func (b *Board) Table() *topology.Table {
	return b.table
}

// Decoder returns the port listener. Exposed for tests and custom wiring.
func (b *Board) Decoder() *charlie.Decoder {
	return b.decoder
}

// Changes returns the change signal.
func (b *Board) Changes() *signal.Counter {
	return &b.changes
}

// ButtonRequests returns the counter the emulator drains for button presses.
func (b *Board) ButtonRequests() *signal.Counter {
	return &b.buttons
}

// HoldTicks returns the POV hold duration in frames.
func (b *Board) HoldTicks() int {
	return b.buf.HoldTicks()
}

// PollTick is called on the render goroutine once per check period and
// reports whether a redraw should be dispatched.
func (b *Board) PollTick(now time.Time) bool {
	return b.sched.Poll(now)
}

// Redraws returns the number of redraws PollTick has dispatched.
func (b *Board) Redraws() uint64 {
	return b.sched.Redraws()
}

// RenderFrame ticks the POV buffer once: draw is called with every lit LED,
// and each lit LED decays as a result of having been drawn.
func (b *Board) RenderFrame(now time.Time, draw func(topology.Entry)) Frame {
	b.frames++
	f := Frame{
		Seq:   b.frames,
		Time:  now,
		State: b.decoder.Registers().State,
	}
	b.buf.Tick(func(slot int) {
		e := b.table.Entry(slot)
		f.Lit = append(f.Lit, e.LED)
		if draw != nil {
			draw(e)
		}
	})
	return f
}

// RequestButtonPress asks the emulator to press the button on its next loop.
func (b *Board) RequestButtonPress() {
	b.buttons.Notify()
}

// SameLit reports whether two frames show the same LEDs.
func SameLit(a, b Frame) bool {
	if len(a.Lit) != len(b.Lit) {
		return false
	}
	for i := range a.Lit {
		if a.Lit[i] != b.Lit[i] {
			return false
		}
	}
	return true
}
