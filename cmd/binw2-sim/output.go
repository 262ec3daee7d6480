package main

import (
	"fmt"
	"log"
	"time"

	"github.com/sweeney/binw2-sim/internal/board"
	"github.com/sweeney/binw2-sim/internal/gpio"
	"github.com/sweeney/binw2-sim/internal/mqtt"
	"github.com/sweeney/binw2-sim/internal/status"
)

// outputs fans rendered frames out to the status tracker, the GPIO mirror and
// MQTT. It runs on the render goroutine. mirror, publisher and mqttStatus
// may be nil.
type outputs struct {
	board      *board.Board
	tracker    *status.Tracker
	mirror     *gpio.Mirror
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	now        func() time.Time

	last   board.Frame
	primed bool
}

func (o *outputs) frame(f board.Frame) {
	d := o.board.Decoder()
	o.tracker.Update(f, d.Registers(), d.Stats(), o.board.Changes().Load(), o.board.Redraws())
	o.tracker.SetButtonRequests(o.board.ButtonRequests().Load())
	if o.mqttStatus != nil {
		o.tracker.SetMQTTConnected(o.mqttStatus.IsConnected())
	}

	if o.primed && board.SameLit(o.last, f) {
		return
	}
	o.last, o.primed = f, true

	if o.mirror != nil {
		if err := o.mirror.Show(f.Lit); err != nil {
			log.Printf("%v", err)
		}
	}
	if o.publisher != nil {
		if err := o.publisher.Publish(f); err != nil {
			log.Printf("publish error: %v", err)
		}
	}
}

func (o *outputs) statusLine() string {
	snap := o.tracker.Snapshot()
	t := snap.DisplayTime()
	if t == "" {
		t = "--:--"
	}
	return fmt.Sprintf("%s  frame %d  state 0x%02X  redraws %d", t, snap.Frame.Seq, snap.Registers.State, snap.Redraws)
}

func (o *outputs) startup() {
	o.system("STARTUP", "")
}

func (o *outputs) shutdown(reason string) {
	o.system("SHUTDOWN", reason)
}

// system publishes a retained lifecycle event carrying a full status snapshot.
func (o *outputs) system(event, reason string) {
	if o.publisher == nil {
		return
	}
	if o.mqttStatus != nil {
		o.tracker.SetMQTTConnected(o.mqttStatus.IsConnected())
	}
	snap := o.tracker.Snapshot()
	e := mqtt.SystemEvent{
		Timestamp:  o.now(),
		Event:      event,
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	}
	if err := o.publisher.PublishSystem(e); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
		return
	}
	log.Printf("published %s event", event)
}
