package avr

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/sweeney/binw2-sim/internal/signal"
)

// Firmware is the program a Machine runs. Step executes a slice of the
// program and returns the clock cycles it took (at least 1).
type Firmware interface {
	Reset(m *Machine)
	Step(m *Machine) uint64
}

// Defaults match the binw2 board.
const (
	DefaultMCU        = "attiny13"
	DefaultFrequency  = 4800000
	DefaultButtonLine = 4
	DefaultPress      = time.Second
)

// mcus lists the supported parts and the port their I/O lives on.
var mcus = map[string]byte{
	"attiny13":  'B',
	"attiny85":  'B',
	"atmega328": 'B',
}

// Config configures a Machine.
type Config struct {
	MCU        string
	Frequency  uint64        // Hz
	Realtime   bool          // pace emulated time to the wall clock
	ButtonLine uint8         // port line the push button is wired to
	Press      time.Duration // emulated length of one button press
}

// Machine is the emulated microcontroller.
type Machine struct {
	cfg      Config
	port     *Port
	button   *Button
	fw       Firmware
	requests *signal.Counter
	lastReq  uint64
	cycles   uint64
	steps    uint64
}

// New builds a machine running fw. Button presses are requested through
// requests, typically from the render goroutine.
func New(cfg Config, fw Firmware, requests *signal.Counter) (*Machine, error) {
	if cfg.MCU == "" {
		cfg.MCU = DefaultMCU
	}
	name, ok := mcus[cfg.MCU]
	if !ok {
		return nil, fmt.Errorf("avr: MCU %q not known", cfg.MCU)
	}
	if cfg.Frequency == 0 {
		cfg.Frequency = DefaultFrequency
	}
	if cfg.Press <= 0 {
		cfg.Press = DefaultPress
	}
	if cfg.ButtonLine > 7 {
		return nil, fmt.Errorf("avr: button line %d out of range", cfg.ButtonLine)
	}
	if fw == nil {
		return nil, fmt.Errorf("avr: no firmware")
	}
	if requests == nil {
		requests = &signal.Counter{}
	}

	port := NewPort(name)
	m := &Machine{
		cfg:      cfg,
		port:     port,
		button:   NewButton(port, cfg.ButtonLine),
		fw:       fw,
		requests: requests,
		lastReq:  requests.Load(),
	}
	return m, nil
}

// Port returns the machine's I/O port.
func (m *Machine) Port() *Port {
	return m.port
}

// Button returns the push button peripheral.
func (m *Machine) Button() *Button {
	return m.button
}

// MCU returns the part name.
func (m *Machine) MCU() string {
	return m.cfg.MCU
}

// Frequency returns the clock in Hz.
func (m *Machine) Frequency() uint64 {
	return m.cfg.Frequency
}

// Cycles returns the clock cycles executed since Reset.
func (m *Machine) Cycles() uint64 {
	return m.cycles
}

// Elapsed returns emulated time since Reset.
func (m *Machine) Elapsed() time.Duration {
	return time.Duration(float64(m.cycles) / float64(m.cfg.Frequency) * float64(time.Second))
}

// CyclesFor converts an emulated duration to clock cycles.
func (m *Machine) CyclesFor(d time.Duration) uint64 {
	return uint64(math.Round(d.Seconds() * float64(m.cfg.Frequency)))
}

// Reset restarts the firmware with the clock at zero.
func (m *Machine) Reset() {
	m.cycles = 0
	m.steps = 0
	m.fw.Reset(m)
}

// Step runs one iteration of the emulator loop.
func (m *Machine) Step() {
	if changed, seen := m.requests.Changed(m.lastReq); changed {
		m.lastReq = seen
		log.Printf("avr: button pressed")
		m.button.Press(m.cycles + m.CyclesFor(m.cfg.Press))
	}

	n := m.fw.Step(m)
	if n == 0 {
		n = 1
	}
	m.cycles += n
	m.steps++
	m.button.step(m.cycles)
}

// Run resets the machine and steps it until ctx is done. With Realtime set it
// sleeps whenever emulated time gets ahead of the wall clock.
func (m *Machine) Run(ctx context.Context) error {
	m.Reset()
	log.Printf("avr: running %s at %d Hz (realtime=%v)", m.cfg.MCU, m.cfg.Frequency, m.cfg.Realtime)

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		m.Step()

		if m.cfg.Realtime && m.steps%64 == 0 {
			if ahead := m.Elapsed() - time.Since(start); ahead > time.Millisecond {
				time.Sleep(ahead)
			}
		}
	}
}
