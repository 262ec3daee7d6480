package mqtt

import "log"

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
	latest   bool // only the newest message with this flag and topic is kept
}

// outbox queues messages while the broker is unreachable. Display frames are
// marked latest: a newer frame replaces the queued one, since only the
// current display matters after a reconnect. Other messages queue in order
// up to capacity, after which the oldest is dropped.
// Not safe for concurrent use; RealPublisher holds its mutex around it.
type outbox struct {
	msgs     []bufferedMsg
	capacity int
	dropped  int
}

func newOutbox(capacity int) *outbox {
	return &outbox{capacity: capacity}
}

func (o *outbox) push(msg bufferedMsg) {
	if msg.latest {
		for i, m := range o.msgs {
			if m.latest && m.topic == msg.topic {
				o.msgs = append(o.msgs[:i], o.msgs[i+1:]...)
				break
			}
		}
	}
	if len(o.msgs) == o.capacity {
		if o.dropped == 0 {
			log.Printf("mqtt: outbox full (%d messages), dropping oldest", o.capacity)
		}
		o.msgs = o.msgs[1:]
		o.dropped++
	}
	o.msgs = append(o.msgs, msg)
}

// requeue puts messages that could not be replayed back at the front of the
// outbox, ahead of anything queued since they were drained. A latest message
// is skipped when a newer one for its topic is already queued.
func (o *outbox) requeue(msgs []bufferedMsg) {
	var front []bufferedMsg
	for _, msg := range msgs {
		if msg.latest && o.hasLatest(msg.topic) {
			continue
		}
		front = append(front, msg)
	}
	o.msgs = append(front, o.msgs...)
	if over := len(o.msgs) - o.capacity; over > 0 {
		o.msgs = o.msgs[over:]
		o.dropped += over
	}
}

func (o *outbox) hasLatest(topic string) bool {
	for _, m := range o.msgs {
		if m.latest && m.topic == topic {
			return true
		}
	}
	return false
}

// drainAll returns the queued messages oldest first and empties the outbox.
func (o *outbox) drainAll() []bufferedMsg {
	if len(o.msgs) == 0 {
		return nil
	}
	if o.dropped > 0 {
		log.Printf("mqtt: %d messages were dropped while offline", o.dropped)
	}
	out := o.msgs
	o.msgs = nil
	o.dropped = 0
	return out
}

func (o *outbox) len() int {
	return len(o.msgs)
}
