package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/binw2-sim/internal/board"
	"github.com/sweeney/binw2-sim/internal/topology"
)

func testFrame() board.Frame {
	return board.Frame{
		Seq:   42,
		Time:  time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		State: 0x31,
		Lit:   []topology.LED{1, 14},
	}
}

func TestFormatPayload(t *testing.T) {
	payload, err := FormatPayload(testFrame())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Display.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("timestamp: got %s", parsed.Display.Timestamp)
	}
	if parsed.Display.Seq != 42 {
		t.Errorf("seq: got %d, want 42", parsed.Display.Seq)
	}
	if parsed.Display.State != "0x31" {
		t.Errorf("state: got %s, want 0x31", parsed.Display.State)
	}
	if len(parsed.Display.Lit) != 2 || parsed.Display.Lit[0] != 1 || parsed.Display.Lit[1] != 14 {
		t.Errorf("lit: got %v, want [1 14]", parsed.Display.Lit)
	}
}

func TestFormatPayloadExactJSON(t *testing.T) {
	payload, err := FormatPayload(testFrame())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"display":{"timestamp":"2026-02-02T22:18:12Z","seq":42,"state":"0x31","lit":[1,14]}}`
	if string(payload) != want {
		t.Errorf("got %s, want %s", payload, want)
	}
}

func TestFormatPayloadDarkFrame(t *testing.T) {
	payload, err := FormatPayload(board.Frame{Time: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"display":{"timestamp":"2026-01-01T00:00:00Z","seq":0,"state":"0x00","lit":[]}}`
	if string(payload) != want {
		t.Errorf("got %s, want %s", payload, want)
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	f := testFrame()
	f.Time = time.Date(2026, 2, 3, 3, 18, 12, 0, loc)

	payload, _ := FormatPayload(f)
	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Display.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("timestamp not converted to UTC: got %s", parsed.Display.Timestamp)
	}
}

func TestTopics(t *testing.T) {
	if Topic != "binw2/sim/display" {
		t.Errorf("Topic: got %s", Topic)
	}
	if TopicSystem != "binw2/sim/system" {
		t.Errorf("TopicSystem: got %s", TopicSystem)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"system":{"timestamp":"2026-02-02T22:18:12Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != want {
		t.Errorf("got %s, want %s", payload, want)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Event:     "RECONNECTED",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"system":{"timestamp":"2026-02-02T22:18:12Z","event":"RECONNECTED"}}`
	if string(payload) != want {
		t.Errorf("got %s, want %s", payload, want)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("got %s, want %s", payload, raw)
	}
}

func TestWillPayloadFormat(t *testing.T) {
	data, err := WillPayload()
	if err != nil {
		t.Fatalf("WillPayload: %v", err)
	}
	var parsed SystemPayload
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.System.Event != "OFFLINE" {
		t.Errorf("event: got %s, want OFFLINE", parsed.System.Event)
	}
	if parsed.System.Reason == "" {
		t.Error("expected a reason on the will message")
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	if err := f.Publish(testFrame()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(f.Frames))
	}
	if f.Frames[0].Seq != 42 {
		t.Errorf("seq: got %d, want 42", f.Frames[0].Seq)
	}
	if len(f.Payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(f.Payloads))
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker down")

	if err := f.Publish(testFrame()); err == nil {
		t.Fatal("expected error")
	}
	if len(f.Frames) != 0 {
		t.Errorf("expected no frames recorded, got %d", len(f.Frames))
	}
}

func TestFakePublisherPublishSystem(t *testing.T) {
	f := NewFakePublisher()

	if err := f.PublishSystem(SystemEvent{Event: "STARTUP", Retained: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.SystemEvents) != 1 || f.SystemEvents[0].Event != "STARTUP" {
		t.Fatalf("system events: got %+v", f.SystemEvents)
	}
	if !f.SystemEvents[0].Retained {
		t.Error("retained flag lost")
	}

	f.PublishSystemError = errors.New("boom")
	if err := f.PublishSystem(SystemEvent{Event: "SHUTDOWN"}); err == nil {
		t.Error("expected error")
	}
}

func TestFakePublisherCloseAndReset(t *testing.T) {
	f := NewFakePublisher()
	f.Connected = true
	_ = f.Publish(testFrame())
	_ = f.Close()

	if !f.Closed {
		t.Error("expected Closed=true")
	}
	if !f.IsConnected() {
		t.Error("expected IsConnected=true")
	}

	f.Reset()
	if f.Closed || f.Connected || len(f.Frames) != 0 || len(f.Payloads) != 0 {
		t.Errorf("Reset left state behind: %+v", f)
	}
	if err := f.Publish(testFrame()); err != nil {
		t.Fatalf("publish after reset: %v", err)
	}
}

func TestFakePublisherSatisfiesInterfaces(t *testing.T) {
	var _ Publisher = NewFakePublisher()
	var _ ConnectionStatus = NewFakePublisher()
	var _ Publisher = (*RealPublisher)(nil)
	var _ ConnectionStatus = (*RealPublisher)(nil)
}
