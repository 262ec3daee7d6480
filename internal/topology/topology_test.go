package topology

import (
	"strings"
	"testing"
)

func TestDefaultTable(t *testing.T) {
	tbl := Default()

	if tbl.Len() != 14 {
		t.Fatalf("Len: got %d, want 14", tbl.Len())
	}

	slot, ok := tbl.Slot(1)
	if !ok {
		t.Fatal("LED 1 missing")
	}
	if slot != 0 {
		t.Errorf("LED 1 slot: got %d, want 0", slot)
	}
	if e := tbl.Entry(slot); e.Pattern != 0x31 {
		t.Errorf("LED 1 pattern: got 0x%02X, want 0x31", e.Pattern)
	}

	w, h := tbl.Bounds()
	if w != 5 || h != 7 {
		t.Errorf("Bounds: got %dx%d, want 5x7", w, h)
	}

	var indicators int
	for _, e := range tbl.Entries() {
		if e.Kind == Indicator {
			indicators++
			if e.Line != LineAMPM {
				t.Errorf("LED %d: line got %d, want %d", e.LED, e.Line, LineAMPM)
			}
		}
	}
	if indicators != 2 {
		t.Errorf("indicators: got %d, want 2", indicators)
	}
}

func TestDefaultPatternsAreDistinct(t *testing.T) {
	seen := map[byte]LED{}
	for _, e := range Default().Entries() {
		if e.Kind != Charlieplexed {
			continue
		}
		if other, dup := seen[e.Pattern]; dup {
			t.Errorf("pattern 0x%02X shared by LED %d and LED %d", e.Pattern, other, e.LED)
		}
		seen[e.Pattern] = e.LED
	}
	if len(seen) != 12 {
		t.Errorf("charlieplexed LEDs: got %d, want 12", len(seen))
	}
}

func TestNewRejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    string
	}{
		{"empty", nil, "empty table"},
		{"zero id", []Entry{{LED: 0, Pattern: 0x31}}, "reserved"},
		{"duplicate id", []Entry{{LED: 1, Pattern: 0x31}, {LED: 1, Pattern: 0x51}}, "duplicate LED 1"},
		{"no output", []Entry{{LED: 1, Pattern: 0x01}}, "drives no line"},
		{"high input", []Entry{{LED: 1, Pattern: 0x34}}, "input line high"},
		{"no high line", []Entry{{LED: 1, Pattern: 0x30}}, "no high line"},
		{"indicator in nibble", []Entry{{LED: 1, Kind: Indicator, Line: 2}}, "outside 4..7"},
		{"indicator past port", []Entry{{LED: 1, Kind: Indicator, Line: 8}}, "outside 4..7"},
		{"negative cell", []Entry{{LED: 1, Pattern: 0x31, Cell: Cell{-1, 0}}}, "negative cell"},
		{"unknown kind", []Entry{{LED: 1, Kind: Kind(9)}}, "unknown kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := New(tt.entries)
			if err == nil {
				t.Fatalf("expected error, got table with %d entries", tbl.Len())
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error: got %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestNewAllowsSharedPattern(t *testing.T) {
	tbl, err := New([]Entry{
		{LED: 1, Pattern: 0x31},
		{LED: 2, Pattern: 0x31, Cell: Cell{1, 0}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.Len() != 2 {
		t.Errorf("Len: got %d, want 2", tbl.Len())
	}
}

func TestNewCopiesEntries(t *testing.T) {
	entries := []Entry{{LED: 1, Pattern: 0x31}}
	tbl, err := New(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries[0].Pattern = 0x51
	if got := tbl.Entry(0).Pattern; got != 0x31 {
		t.Errorf("table changed with caller slice: got 0x%02X", got)
	}
}

func TestQuadAt(t *testing.T) {
	q := QuadAt(Cell{1, 2})
	want := Quad{
		{32 + LEDSize, 64 + LEDSize},
		{32, 64 + LEDSize},
		{32, 64},
		{32 + LEDSize, 64},
	}
	if q != want {
		t.Errorf("QuadAt: got %v, want %v", q, want)
	}
}

func TestTableSize(t *testing.T) {
	w, h := Default().Size()
	if w != 160 || h != 224 {
		t.Errorf("Size: got %vx%v, want 160x224", w, h)
	}
}

func TestIndicatorMask(t *testing.T) {
	e := Entry{Kind: Indicator, Line: 5}
	if e.Mask() != 0x20 {
		t.Errorf("Mask: got 0x%02X, want 0x20", e.Mask())
	}
}
