// Package gpio mirrors simulated LEDs onto real output lines.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sweeney/binw2-sim/internal/topology"
)

// Writer drives a fixed set of output lines.
type Writer interface {
	// Write sets every line, in the order the writer was built with.
	// true drives the line high.
	Write(values []bool) error

	// Close releases GPIO resources.
	Close() error
}

// DefaultChip is the GPIO chip used when none is configured.
const DefaultChip = "gpiochip0"

// Mapping binds one LED to one GPIO line offset.
type Mapping struct {
	LED  topology.LED
	Line int
}

// ParseMappings parses "led:line,led:line" as given on the command line.
// An empty string yields no mappings.
func ParseMappings(s string) ([]Mapping, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var out []Mapping
	seen := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		led, line, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("gpio: mapping %q: want led:line", part)
		}
		l, err := strconv.ParseUint(led, 10, 8)
		if err != nil || l == 0 {
			return nil, fmt.Errorf("gpio: mapping %q: bad LED id", part)
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("gpio: mapping %q: bad line offset", part)
		}
		if seen[n] {
			return nil, fmt.Errorf("gpio: line %d mapped twice", n)
		}
		seen[n] = true
		out = append(out, Mapping{LED: topology.LED(l), Line: n})
	}
	return out, nil
}

// Lines returns the line offsets of the mappings, in order.
func Lines(m []Mapping) []int {
	lines := make([]int, len(m))
	for i, mm := range m {
		lines[i] = mm.Line
	}
	return lines
}

// Mirror copies the lit state of mapped LEDs to a Writer. It only writes
// when a mapped LED changes, so a steady display costs no syscalls.
type Mirror struct {
	w      Writer
	leds   []topology.LED
	last   []bool
	primed bool
}

// NewMirror builds a mirror writing through w, one value per mapping.
func NewMirror(w Writer, m []Mapping) *Mirror {
	leds := make([]topology.LED, len(m))
	for i, mm := range m {
		leds[i] = mm.LED
	}
	return &Mirror{w: w, leds: leds, last: make([]bool, len(m))}
}

// Show writes the mapped LEDs of a frame's lit set.
func (m *Mirror) Show(lit []topology.LED) error {
	next := make([]bool, len(m.leds))
	for i, led := range m.leds {
		for _, l := range lit {
			if l == led {
				next[i] = true
				break
			}
		}
	}

	if m.primed && equal(next, m.last) {
		return nil
	}
	if err := m.w.Write(next); err != nil {
		return fmt.Errorf("gpio: mirror: %w", err)
	}
	m.last = next
	m.primed = true
	return nil
}

// Close releases the underlying writer.
func (m *Mirror) Close() error {
	return m.w.Close()
}

func equal(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
