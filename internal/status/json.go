package status

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/binw2-sim/internal/firmware"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string      `json:"event,omitempty"`
	Reason        string      `json:"reason,omitempty"`
	Display       DisplayJSON `json:"display"`
	Port          PortJSON    `json:"port"`
	Counts        CountsJSON  `json:"counts"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	StartTime     string      `json:"start_time"`
	Timestamp     string      `json:"timestamp"`
	MQTT          MQTTStatus  `json:"mqtt"`
	Config        ConfigJSON  `json:"config"`
}

// DisplayJSON describes the last rendered frame.
type DisplayJSON struct {
	Frame uint64 `json:"frame"`
	Lit   []int  `json:"lit"`
	Time  string `json:"time,omitempty"`
}

// PortJSON reports the port registers as hex strings.
type PortJSON struct {
	Pin   string `json:"pin"`
	Dir   string `json:"dir"`
	State string `json:"state"`
}

// CountsJSON is the JSON representation of activity counters.
type CountsJSON struct {
	Changes        uint64 `json:"changes"`
	StateChanges   uint64 `json:"state_changes"`
	Arms           uint64 `json:"arms"`
	Redraws        uint64 `json:"redraws"`
	ButtonRequests uint64 `json:"button_requests"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of simulator config.
type ConfigJSON struct {
	UI          string `json:"ui"`
	MCU         string `json:"mcu"`
	FrequencyHz uint64 `json:"frequency_hz"`
	HoldTicks   int    `json:"hold_ticks"`
	PollMs      int64  `json:"poll_ms"`
	RedrawMs    int64  `json:"redraw_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

func hex(b byte) string {
	return fmt.Sprintf("0x%02X", b)
}

// DisplayTime returns the watch time shown by the snapshot's frame, or ""
// when the LEDs do not spell a valid time.
func (s Snapshot) DisplayTime() string {
	h, m, pm, ok := firmware.ReadTime(s.Frame.Lit)
	if !ok {
		return ""
	}
	return firmware.FormatTime(h, m, pm)
}

func buildInner(snap Snapshot) StatusInner {
	lit := make([]int, len(snap.Frame.Lit))
	for i, l := range snap.Frame.Lit {
		lit[i] = int(l)
	}

	return StatusInner{
		Display: DisplayJSON{
			Frame: snap.Frame.Seq,
			Lit:   lit,
			Time:  snap.DisplayTime(),
		},
		Port: PortJSON{
			Pin:   hex(snap.Registers.Pin),
			Dir:   hex(snap.Registers.Dir),
			State: hex(snap.Registers.State),
		},
		Counts: CountsJSON{
			Changes:        snap.Changes,
			StateChanges:   snap.Stats.StateChanges,
			Arms:           snap.Stats.Arms,
			Redraws:        snap.Redraws,
			ButtonRequests: snap.ButtonRequests,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			UI:          snap.Config.UI,
			MCU:         snap.Config.MCU,
			FrequencyHz: snap.Config.FrequencyHz,
			HoldTicks:   snap.Config.HoldTicks,
			PollMs:      snap.Config.PollMs,
			RedrawMs:    snap.Config.RedrawMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
