// Package topology describes how the LEDs of a board are wired to one
// 8-bit I/O port and where each LED is drawn.
// This package is pure data: no I/O, no goroutines, no time.
package topology

import (
	"errors"
	"fmt"
	"math/bits"
)

// LED identifies a physical LED by the number printed on the board.
type LED uint8

// Kind tells the decoder how an LED is driven.
type Kind uint8

const (
	// Charlieplexed LEDs are lit by a direction/level pattern on the low nibble.
	Charlieplexed Kind = iota
	// Indicator LEDs hang off a dedicated line outside the charlieplexed nibble.
	Indicator
)

func (k Kind) String() string {
	switch k {
	case Charlieplexed:
		return "charlieplexed"
	case Indicator:
		return "indicator"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Cell is a position on the display grid. Y grows upwards.
type Cell struct {
	X int
	Y int
}

// Entry is one row of the wiring table.
type Entry struct {
	LED  LED
	Kind Kind

	// Pattern is the charlieplex state that lights this LED:
	// high nibble = lines configured as output, low nibble = lines driven high.
	Pattern byte

	// Line and Level apply to indicators: lit while Line is an output at Level.
	Line  uint8
	Level bool

	Cell Cell
}

// Mask returns the port bit of an indicator's line.
func (e Entry) Mask() byte {
	return 1 << e.Line
}

// Table is a validated, immutable wiring table.
type Table struct {
	entries []Entry
	slots   map[LED]int
	width   int
	height  int
}

// New validates entries and builds a Table. Validation happens here so that
// a broken table fails at startup instead of producing a dark display.
func New(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, errors.New("topology: empty table")
	}

	t := &Table{
		entries: make([]Entry, len(entries)),
		slots:   make(map[LED]int, len(entries)),
	}
	copy(t.entries, entries)

	for i, e := range t.entries {
		if err := validate(e); err != nil {
			return nil, fmt.Errorf("topology: entry %d: %w", i, err)
		}
		if _, dup := t.slots[e.LED]; dup {
			return nil, fmt.Errorf("topology: entry %d: duplicate LED %d", i, e.LED)
		}
		t.slots[e.LED] = i
		if e.Cell.X+1 > t.width {
			t.width = e.Cell.X + 1
		}
		if e.Cell.Y+1 > t.height {
			t.height = e.Cell.Y + 1
		}
	}

	return t, nil
}

func validate(e Entry) error {
	if e.LED == 0 {
		return errors.New("LED id 0 is reserved")
	}
	if e.Cell.X < 0 || e.Cell.Y < 0 {
		return fmt.Errorf("LED %d: negative cell (%d,%d)", e.LED, e.Cell.X, e.Cell.Y)
	}

	switch e.Kind {
	case Charlieplexed:
		out := e.Pattern >> 4
		lit := e.Pattern & 0x0F
		if out == 0 {
			return fmt.Errorf("LED %d: pattern 0x%02X drives no line", e.LED, e.Pattern)
		}
		if lit&^out != 0 {
			return fmt.Errorf("LED %d: pattern 0x%02X drives an input line high", e.LED, e.Pattern)
		}
		if bits.OnesCount8(lit) == 0 {
			return fmt.Errorf("LED %d: pattern 0x%02X has no high line", e.LED, e.Pattern)
		}
	case Indicator:
		if e.Line < 4 || e.Line > 7 {
			return fmt.Errorf("LED %d: indicator line %d outside 4..7", e.LED, e.Line)
		}
	default:
		return fmt.Errorf("LED %d: unknown kind %d", e.LED, e.Kind)
	}
	return nil
}

// Len returns the number of LEDs.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the table rows in slot order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Entry returns the row at slot i.
func (t *Table) Entry(i int) Entry {
	return t.entries[i]
}

// Slot returns the zero-based storage slot of an LED.
func (t *Table) Slot(led LED) (int, bool) {
	i, ok := t.slots[led]
	return i, ok
}

// Bounds returns the grid size in cells.
func (t *Table) Bounds() (width, height int) {
	return t.width, t.height
}
