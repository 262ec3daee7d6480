//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealWriter drives output lines through the Linux GPIO character device.
type RealWriter struct {
	chip  *gpiocdev.Chip
	lines *gpiocdev.Lines
	vals  []int
}

// NewRealWriter requests the given line offsets on chip as outputs, driven low.
func NewRealWriter(chip string, offsets []int) (*RealWriter, error) {
	c, err := gpiocdev.NewChip(chip, gpiocdev.WithConsumer("binw2-sim"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	lines, err := c.RequestLines(offsets, gpiocdev.AsOutput(make([]int, len(offsets))...))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("request lines %v: %w", offsets, err)
	}

	return &RealWriter{
		chip:  c,
		lines: lines,
		vals:  make([]int, len(offsets)),
	}, nil
}

// Write sets every requested line.
func (r *RealWriter) Write(values []bool) error {
	if len(values) != len(r.vals) {
		return fmt.Errorf("write %d values to %d lines", len(values), len(r.vals))
	}
	for i, v := range values {
		r.vals[i] = 0
		if v {
			r.vals[i] = 1
		}
	}
	if err := r.lines.SetValues(r.vals); err != nil {
		return fmt.Errorf("set values: %w", err)
	}
	return nil
}

// Close releases GPIO resources.
// Lines go back to input with pull-down (the Pi boot default) so nothing
// stays lit after the simulator exits.
func (r *RealWriter) Close() error {
	var errs []error

	if r.lines != nil {
		if err := r.lines.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure lines: %w", err))
		}
		if err := r.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close lines: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
