package board

import (
	"testing"
	"time"

	"github.com/sweeney/binw2-sim/internal/avr"
	"github.com/sweeney/binw2-sim/internal/signal"
	"github.com/sweeney/binw2-sim/internal/topology"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newBoard(t *testing.T) *Board {
	t.Helper()
	b, err := New(topology.Default(), Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestNewRejectsMissingTable(t *testing.T) {
	if _, err := New(nil, Config{}); err == nil {
		t.Fatal("expected error for nil table")
	}
}

func TestNewDefaults(t *testing.T) {
	b := newBoard(t)
	if b.HoldTicks() != 1 {
		t.Errorf("HoldTicks: got %d, want 1", b.HoldTicks())
	}
	if b.Table().Len() != 14 {
		t.Errorf("Table.Len: got %d, want 14", b.Table().Len())
	}
}

func TestAttachRegistersDecoder(t *testing.T) {
	b := newBoard(t)
	p := avr.NewPort('B')
	b.Attach(p)

	p.WriteDDR(0x03)
	p.WritePORT(0x01)

	if got := b.Decoder().Registers().State; got != 0x31 {
		t.Errorf("State: got 0x%02X, want 0x31", got)
	}
}

func TestRenderFrameYieldsAndDecays(t *testing.T) {
	b := newBoard(t)
	p := avr.NewPort('B')
	b.Attach(p)
	p.WriteDDR(0x03)
	p.WritePORT(0x01)

	var drawn []topology.Entry
	f := b.RenderFrame(t0, func(e topology.Entry) { drawn = append(drawn, e) })

	if len(drawn) != 1 || drawn[0].LED != 1 {
		t.Fatalf("drawn: got %v, want LED 1", drawn)
	}
	if drawn[0].Quad() != topology.QuadAt(topology.Cell{X: 0, Y: 0}) {
		t.Errorf("quad: got %v", drawn[0].Quad())
	}
	if f.Seq != 1 || f.State != 0x31 || len(f.Lit) != 1 {
		t.Errorf("frame: got %+v", f)
	}

	f = b.RenderFrame(t0.Add(time.Second/24), nil)
	if len(f.Lit) != 0 {
		t.Errorf("second frame: got %v, want dark", f.Lit)
	}
	if f.Seq != 2 {
		t.Errorf("Seq: got %d, want 2", f.Seq)
	}
}

func TestPollTickFollowsChanges(t *testing.T) {
	b := newBoard(t)
	p := avr.NewPort('B')
	b.Attach(p)

	if b.PollTick(t0) {
		t.Fatal("redraw before any change")
	}

	p.WriteDDR(0x03)
	if !b.PollTick(t0.Add(signal.DefaultCheck)) {
		t.Error("expected redraw after a state change")
	}
	if b.PollTick(t0.Add(time.Second)) {
		t.Error("expected no redraw without new changes")
	}
	if b.Redraws() != 1 {
		t.Errorf("Redraws: got %d, want 1", b.Redraws())
	}
}

func TestRequestButtonPress(t *testing.T) {
	b := newBoard(t)
	before := b.ButtonRequests().Load()
	b.RequestButtonPress()
	if changed, _ := b.ButtonRequests().Changed(before); !changed {
		t.Error("button request not recorded")
	}
}

func TestSameLit(t *testing.T) {
	a := Frame{Lit: []topology.LED{1, 3}}
	if !SameLit(a, Frame{Lit: []topology.LED{1, 3}}) {
		t.Error("identical frames reported different")
	}
	if SameLit(a, Frame{Lit: []topology.LED{1}}) {
		t.Error("different lengths reported same")
	}
	if SameLit(a, Frame{Lit: []topology.LED{1, 4}}) {
		t.Error("different LEDs reported same")
	}
	if !SameLit(Frame{}, Frame{}) {
		t.Error("two dark frames reported different")
	}
}
