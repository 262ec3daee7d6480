package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/binw2-sim/internal/board"
)

// OutboxSize is how many messages are kept while the broker is unreachable.
const OutboxSize = 256

const publishTimeout = 5 * time.Second

// RealPublisher publishes to an actual MQTT broker.
type RealPublisher struct {
	client paho.Client
	topic  string

	mu        sync.Mutex
	connected bool
	replaying bool // outbox is being flushed; send keeps queueing
	everUp    bool
	outbox    *outbox
	onChange  func(bool)
}

// NewRealPublisher creates a publisher connected to the given broker.
// onChange, if non-nil, is called whenever the connection goes up or down.
func NewRealPublisher(broker string, onChange func(bool)) (*RealPublisher, error) {
	p := &RealPublisher{
		topic:    Topic,
		outbox:   newOutbox(OutboxSize),
		onChange: onChange,
	}

	will, err := WillPayload()
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("binw2-sim").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(p.handleConnect).
		SetConnectionLostHandler(p.handleLost)

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		// paho keeps retrying in the background; queue until it gets through.
		log.Printf("mqtt: %s not reachable yet, queueing messages", broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		p.client.Disconnect(0)
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

func (p *RealPublisher) handleConnect(c paho.Client) {
	p.mu.Lock()
	p.connected = true
	p.replaying = true
	reconnect := p.everUp
	p.everUp = true
	p.mu.Unlock()

	p.notify(true)

	n, ok := p.replay(c)
	if reconnect {
		log.Printf("mqtt: reconnected, replayed %d buffered messages", n)
	}
	if !ok || !reconnect {
		return
	}

	payload, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
	if err != nil {
		log.Printf("mqtt: format reconnected event: %v", err)
		return
	}
	if err := p.send(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1}); err != nil {
		log.Printf("mqtt: reconnected event: %v", err)
	}
}

// replay flushes the outbox oldest first until it is empty, and only then
// lets send publish directly. Messages queued during the flush go out after
// the ones already drained. If the connection drops mid-flush, the rest is
// put back for the next connect. It returns how many messages were sent and
// whether the outbox was emptied.
func (p *RealPublisher) replay(c paho.Client) (int, bool) {
	sent := 0
	for {
		p.mu.Lock()
		pending := p.outbox.drainAll()
		if len(pending) == 0 {
			p.replaying = false
			p.mu.Unlock()
			return sent, true
		}
		p.mu.Unlock()

		for i, m := range pending {
			if err := publish(c, m); err != nil {
				log.Printf("mqtt: replay: %v", err)
				if !c.IsConnectionOpen() {
					p.mu.Lock()
					p.outbox.requeue(pending[i:])
					p.replaying = false
					p.mu.Unlock()
					return sent, false
				}
				continue
			}
			sent++
		}
	}
}

func (p *RealPublisher) handleLost(_ paho.Client, err error) {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()

	log.Printf("mqtt: connection lost: %v", err)
	p.notify(false)
}

func (p *RealPublisher) notify(up bool) {
	if p.onChange != nil {
		p.onChange(up)
	}
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// send publishes now, or queues the message while disconnected or while the
// outbox is being replayed.
func (p *RealPublisher) send(msg bufferedMsg) error {
	p.mu.Lock()
	if !p.connected || p.replaying {
		p.outbox.push(msg)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	return publish(p.client, msg)
}

func publish(c paho.Client, msg bufferedMsg) error {
	token := c.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", msg.topic, err)
	}
	return nil
}

// Publish sends a frame to the MQTT broker.
func (p *RealPublisher) Publish(frame board.Frame) error {
	payload, err := FormatPayload(frame)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.send(bufferedMsg{topic: p.topic, payload: payload, latest: true})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 so a SHUTDOWN reaches the broker before we disconnect
	return p.send(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
