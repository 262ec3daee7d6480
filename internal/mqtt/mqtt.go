// Package mqtt publishes display frames and lifecycle events to a broker,
// with a fake for tests.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/binw2-sim/internal/board"
)

// Topic is the MQTT topic for display frames.
const Topic = "binw2/sim/display"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "binw2/sim/system"

// Publisher publishes frames to MQTT.
type Publisher interface {
	// Publish sends a frame whose lit set differs from the previous one.
	// A failed publish must not stop the render loop.
	Publish(frame board.Frame) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (STARTUP, SHUTDOWN, ...).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // "STARTUP", "SHUTDOWN", "OFFLINE", "RECONNECTED"
	Reason     string // "SIGTERM", "SIGINT", "quit" (shutdown only)
	RawPayload []byte // pre-formatted JSON; returned as is by FormatSystemPayload
	Retained   bool
}

// Payload is the display message body.
type Payload struct {
	Display DisplayPayload `json:"display"`
}

// DisplayPayload describes one frame.
type DisplayPayload struct {
	Timestamp string `json:"timestamp"`
	Seq       uint64 `json:"seq"`
	State     string `json:"state"`
	Lit       []int  `json:"lit"`
}

// FormatPayload creates the JSON payload for a frame.
func FormatPayload(frame board.Frame) ([]byte, error) {
	lit := make([]int, len(frame.Lit))
	for i, l := range frame.Lit {
		lit[i] = int(l)
	}
	payload := Payload{
		Display: DisplayPayload{
			Timestamp: frame.Time.UTC().Format(time.RFC3339),
			Seq:       frame.Seq,
			State:     fmt.Sprintf("0x%02X", frame.State),
			Lit:       lit,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the body of events that carry no status snapshot (LWT,
// RECONNECTED).
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// WillPayload is the retained OFFLINE message the broker publishes if the
// simulator drops off without a clean shutdown.
func WillPayload() ([]byte, error) {
	return FormatSystemPayload(SystemEvent{Event: "OFFLINE", Reason: "connection lost"})
}
