package mqtt

import "log"

// pendingMsg is a serialized message held while the broker is unreachable.
type pendingMsg struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// backlog is a fixed-capacity FIFO of messages awaiting reconnection. When
// full the oldest message is dropped: a stale watchdog transition is worth
// less than a fresh one. Not safe for concurrent use, the caller locks.
type backlog struct {
	msgs    []pendingMsg
	max     int
	dropped bool
}

func newBacklog(max int) *backlog {
	return &backlog{max: max}
}

func (b *backlog) push(m pendingMsg) {
	if len(b.msgs) == b.max {
		if !b.dropped {
			log.Printf("mqtt: backlog full (%d messages), dropping oldest", b.max)
			b.dropped = true
		}
		copy(b.msgs, b.msgs[1:])
		b.msgs[len(b.msgs)-1] = m
		return
	}
	b.msgs = append(b.msgs, m)
}

// take returns the queued messages oldest-first and empties the backlog.
func (b *backlog) take() []pendingMsg {
	if len(b.msgs) == 0 {
		return nil
	}
	out := b.msgs
	b.msgs = nil
	b.dropped = false
	return out
}

func (b *backlog) len() int { return len(b.msgs) }
