// Package render draws the simulated board. It polls the board at the check
// rate and only renders when a redraw has been dispatched; each render ticks
// the POV buffer once. The window frontend uses ebiten, the terminal
// frontend draws Grid with ANSI escapes.
package render

import (
	"strings"
	"time"

	"github.com/sweeney/binw2-sim/internal/board"
	"github.com/sweeney/binw2-sim/internal/signal"
	"github.com/sweeney/binw2-sim/internal/topology"
)

// Board is the render side of the simulator core.
type Board interface {
	Table() *topology.Table
	PollTick(now time.Time) bool
	RenderFrame(now time.Time, draw func(topology.Entry)) board.Frame
	RequestButtonPress()
}

// Options configures a frontend.
type Options struct {
	Title   string
	Check   time.Duration     // poll period; 0 = signal.DefaultCheck
	OnFrame func(board.Frame) // called on the render goroutine after each frame
	Status  func() string     // text for the status line; nil hides it
	Now     func() time.Time
}

func (o Options) check() time.Duration {
	if o.Check <= 0 {
		return signal.DefaultCheck
	}
	return o.Check
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) frame(f board.Frame) {
	if o.OnFrame != nil {
		o.OnFrame(f)
	}
}

// Grid renders the board as text, one three-column cell per grid position.
// Row 0 of the board is printed last. Charlieplexed LEDs show as [#] when
// lit, indicators as <#>.
func Grid(table *topology.Table, lit []topology.LED) string {
	w, h := table.Bounds()
	cells := make([][]string, h)
	for y := range cells {
		cells[y] = make([]string, w)
		for x := range cells[y] {
			cells[y][x] = "   "
		}
	}

	on := make(map[topology.LED]bool, len(lit))
	for _, l := range lit {
		on[l] = true
	}
	for _, e := range table.Entries() {
		l, r := "[", "]"
		if e.Kind == topology.Indicator {
			l, r = "<", ">"
		}
		mid := " "
		if on[e.LED] {
			mid = "#"
		}
		cells[h-1-e.Cell.Y][e.Cell.X] = l + mid + r
	}

	var sb strings.Builder
	for y, row := range cells {
		if y > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.TrimRight(strings.Join(row, ""), " "))
	}
	return sb.String()
}
