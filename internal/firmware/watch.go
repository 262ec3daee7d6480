// Package firmware models the binw2 binary watch program: it keeps time from
// the machine clock and multiplexes the charlieplexed LEDs one at a time,
// exactly the way the real firmware drives PORTB and DDRB.
package firmware

import (
	"fmt"
	"time"

	"github.com/sweeney/binw2-sim/internal/avr"
	"github.com/sweeney/binw2-sim/internal/topology"
)

// Cycles spent on one lit LED and on the blanking write between LEDs.
const (
	SlotCycles  = 2400
	BlankCycles = 48
)

// Digit columns, least significant bit first.
var (
	hourTens   = []topology.LED{1}
	hourUnits  = []topology.LED{2, 3, 4, 5}
	minuteTens = []topology.LED{6, 7, 8}
	minuteUnit = []topology.LED{9, 10, 11, 12}
)

// Watch is the binw2 firmware model. It satisfies avr.Firmware.
type Watch struct {
	patterns map[topology.LED]byte
	ampmLine uint8

	start  time.Time
	hour   int // 1..12
	minute int
	pm     bool

	secCycles uint64
	seconds   int

	scan    []byte
	pos     int
	blank   bool
	buttonU bool // last sampled button level, true = released
	dirty   bool
}

// NewWatch builds the firmware for a board table and a start time.
func NewWatch(table *topology.Table, start time.Time) (*Watch, error) {
	w := &Watch{
		patterns: make(map[topology.LED]byte),
		ampmLine: topology.LineAMPM,
		start:    start,
	}
	for _, col := range [][]topology.LED{hourTens, hourUnits, minuteTens, minuteUnit} {
		for _, led := range col {
			slot, ok := table.Slot(led)
			if !ok {
				return nil, fmt.Errorf("firmware: board has no LED %d", led)
			}
			e := table.Entry(slot)
			if e.Kind != topology.Charlieplexed {
				return nil, fmt.Errorf("firmware: LED %d is not charlieplexed", led)
			}
			w.patterns[led] = e.Pattern
		}
	}
	w.SetTime(start)
	return w, nil
}

// SetTime sets the displayed time, dropping seconds.
func (w *Watch) SetTime(t time.Time) {
	h := t.Hour()
	w.pm = h >= 12
	h %= 12
	if h == 0 {
		h = 12
	}
	w.hour = h
	w.minute = t.Minute()
	w.seconds = 0
	w.secCycles = 0
	w.dirty = true
}

// Time returns the displayed time.
func (w *Watch) Time() (hour, minute int, pm bool) {
	return w.hour, w.minute, w.pm
}

// Reset restarts the program from the start time.
func (w *Watch) Reset(m *avr.Machine) {
	w.SetTime(w.start)
	w.pos = 0
	w.blank = false
	w.buttonU = m.Port().ReadPIN()&(1<<m.Button().Line()) != 0
	w.blankPort(m)
}

// Step lights the next LED of the scan, or blanks the port between LEDs.
func (w *Watch) Step(m *avr.Machine) uint64 {
	w.pollButton(m)
	if w.dirty {
		w.rebuild()
	}

	var n uint64
	if w.blank || len(w.scan) == 0 {
		w.blankPort(m)
		w.blank = false
		n = BlankCycles
	} else {
		pat := w.scan[w.pos]
		w.pos = (w.pos + 1) % len(w.scan)
		ampm, pull := w.fixedBits(m)
		p := m.Port()
		p.WriteDDR(pat>>4 | 1<<w.ampmLine)
		p.WritePORT(pat&0x0F | ampm | pull)
		w.blank = true
		n = SlotCycles
	}

	w.keepTime(n, m.Frequency())
	return n
}

// blankPort releases every charlieplexed line: levels first, then directions.
func (w *Watch) blankPort(m *avr.Machine) {
	ampm, pull := w.fixedBits(m)
	p := m.Port()
	p.WritePORT(ampm | pull)
	p.WriteDDR(1 << w.ampmLine)
}

func (w *Watch) fixedBits(m *avr.Machine) (ampm, pull byte) {
	if w.pm {
		ampm = 1 << w.ampmLine
	}
	return ampm, 1 << m.Button().Line()
}

// pollButton advances the minutes on each press (falling edge).
func (w *Watch) pollButton(m *avr.Machine) {
	up := m.Port().ReadPIN()&(1<<m.Button().Line()) != 0
	if w.buttonU && !up {
		w.advanceMinute()
		w.seconds = 0
		w.secCycles = 0
	}
	w.buttonU = up
}

func (w *Watch) keepTime(n, freq uint64) {
	w.secCycles += n
	for w.secCycles >= freq {
		w.secCycles -= freq
		w.seconds++
		if w.seconds == 60 {
			w.seconds = 0
			w.advanceMinute()
		}
	}
}

func (w *Watch) advanceMinute() {
	w.minute++
	if w.minute == 60 {
		w.minute = 0
		w.hour++
		if w.hour == 12 {
			w.pm = !w.pm
		}
		if w.hour == 13 {
			w.hour = 1
		}
	}
	w.dirty = true
}

// rebuild recomputes the list of patterns to multiplex for the current time.
func (w *Watch) rebuild() {
	w.scan = w.scan[:0]
	add := func(col []topology.LED, v int) {
		for bit, led := range col {
			if v&(1<<bit) != 0 {
				w.scan = append(w.scan, w.patterns[led])
			}
		}
	}
	add(hourTens, w.hour/10)
	add(hourUnits, w.hour%10)
	add(minuteTens, w.minute/10)
	add(minuteUnit, w.minute%10)
	if w.pos >= len(w.scan) {
		w.pos = 0
	}
	w.dirty = false
}
