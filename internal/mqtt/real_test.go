package mqtt

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/binw2-sim/internal/board"
	"github.com/sweeney/binw2-sim/internal/topology"
)

type doneToken struct {
	err error
}

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Error() error                   { return t.err }

func (t *doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type sentMsg struct {
	topic   string
	payload []byte
}

// recordingClient is a paho.Client that records publishes. When hold is set,
// the first publish to Topic blocks until release is closed.
type recordingClient struct {
	paho.Client // unused methods panic

	mu      sync.Mutex
	sent    []sentMsg
	hold    bool
	held    chan struct{}
	release chan struct{}
	err     error
	closed  bool
}

func newRecordingClient() *recordingClient {
	return &recordingClient{
		held:    make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (c *recordingClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	block := c.hold && topic == Topic
	if block {
		c.hold = false
	}
	c.mu.Unlock()

	if block {
		close(c.held)
		<-c.release
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return &doneToken{err: c.err}
	}
	c.sent = append(c.sent, sentMsg{topic: topic, payload: payload.([]byte)})
	return &doneToken{}
}

func (c *recordingClient) IsConnectionOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *recordingClient) displaySeqs(t *testing.T) []uint64 {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var seqs []uint64
	for _, m := range c.sent {
		if m.topic != Topic {
			continue
		}
		var p Payload
		if err := json.Unmarshal(m.payload, &p); err != nil {
			t.Fatalf("invalid display payload: %v", err)
		}
		seqs = append(seqs, p.Display.Seq)
	}
	return seqs
}

func (c *recordingClient) events(t *testing.T) []string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var events []string
	for _, m := range c.sent {
		if m.topic != TopicSystem {
			continue
		}
		var p SystemPayload
		if err := json.Unmarshal(m.payload, &p); err != nil {
			t.Fatalf("invalid system payload: %v", err)
		}
		events = append(events, p.System.Event)
	}
	return events
}

func newOfflinePublisher(c paho.Client) *RealPublisher {
	return &RealPublisher{
		client: c,
		topic:  Topic,
		outbox: newOutbox(OutboxSize),
	}
}

func frameSeq(seq uint64) board.Frame {
	return board.Frame{Seq: seq, Time: time.Now(), Lit: []topology.LED{topology.LED(seq)}}
}

func TestPublishQueuesWhileOffline(t *testing.T) {
	c := newRecordingClient()
	p := newOfflinePublisher(c)

	if err := p.Publish(frameSeq(1)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := p.Publish(frameSeq(2)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := c.displaySeqs(t); len(got) != 0 {
		t.Fatalf("sent while offline: got %v", got)
	}

	p.handleConnect(c)

	got := c.displaySeqs(t)
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("display frames: got %v, want [2]", got)
	}
	if !p.IsConnected() {
		t.Error("expected IsConnected=true after connect")
	}
}

func TestFrameDuringReplayIsNotOvertaken(t *testing.T) {
	c := newRecordingClient()
	c.hold = true
	p := newOfflinePublisher(c)

	if err := p.Publish(frameSeq(1)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	done := make(chan struct{})
	go func() {
		p.handleConnect(c)
		close(done)
	}()

	<-c.held
	if err := p.Publish(frameSeq(2)); err != nil {
		t.Fatalf("Publish during replay: %v", err)
	}
	close(c.release)
	<-done

	got := c.displaySeqs(t)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("display frames: got %v, want [1 2]", got)
	}

	// replay is over, frames go straight out
	if err := p.Publish(frameSeq(3)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	got = c.displaySeqs(t)
	if got[len(got)-1] != 3 {
		t.Errorf("last frame: got %d, want 3", got[len(got)-1])
	}
}

func TestReplayRequeuesWhenConnectionDrops(t *testing.T) {
	c := newRecordingClient()
	c.err = errors.New("not connected")
	c.closed = true
	p := newOfflinePublisher(c)

	if err := p.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "STARTUP"}); err != nil {
		t.Fatalf("PublishSystem: %v", err)
	}
	if err := p.Publish(frameSeq(1)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	p.handleConnect(c)

	p.mu.Lock()
	queued := p.outbox.len()
	replaying := p.replaying
	p.mu.Unlock()
	if queued != 2 {
		t.Errorf("outbox after failed replay: got %d, want 2", queued)
	}
	if replaying {
		t.Error("expected replaying=false after giving up")
	}

	// broker comes back
	c.mu.Lock()
	c.err = nil
	c.closed = false
	c.mu.Unlock()
	p.handleConnect(c)

	events := c.events(t)
	if len(events) != 2 || events[0] != "STARTUP" || events[1] != "RECONNECTED" {
		t.Errorf("system events: got %v, want [STARTUP RECONNECTED]", events)
	}
	if got := c.displaySeqs(t); len(got) != 1 || got[0] != 1 {
		t.Errorf("display frames: got %v, want [1]", got)
	}
}

func TestReconnectPublishesEvent(t *testing.T) {
	c := newRecordingClient()
	p := newOfflinePublisher(c)

	var states []bool
	p.onChange = func(up bool) { states = append(states, up) }

	p.handleConnect(c)
	if got := c.events(t); len(got) != 0 {
		t.Errorf("first connect: got events %v, want none", got)
	}

	p.handleLost(c, errors.New("EOF"))
	if p.IsConnected() {
		t.Error("expected IsConnected=false after loss")
	}
	p.handleConnect(c)

	if got := c.events(t); len(got) != 1 || got[0] != "RECONNECTED" {
		t.Errorf("events: got %v, want [RECONNECTED]", got)
	}
	if len(states) != 3 || !states[0] || states[1] || !states[2] {
		t.Errorf("connection callbacks: got %v, want [true false true]", states)
	}
}
