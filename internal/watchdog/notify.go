package watchdog

import "sync"

// Notifier fans state events out to subscribers with a "latest value wins"
// policy: each subscription is a capacity-1 mailbox that the publisher
// overwrites instead of blocking on. A slow or absent observer never stalls
// liveness publication, it just misses intermediate events.
type Notifier struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// Subscription is one observer's handle. Receive events from Events();
// call Close when done.
type Subscription struct {
	n  *Notifier
	ch chan StateEvent
}

// NewNotifier returns an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new observer. Each subscription is independent: all
// see the same future events, but only the latest unread one if they fall
// behind.
func (n *Notifier) Subscribe() *Subscription {
	s := &Subscription{n: n, ch: make(chan StateEvent, 1)}
	n.mu.Lock()
	n.subs[s] = struct{}{}
	n.mu.Unlock()
	return s
}

// Publish delivers the event to every subscription, dropping each mailbox's
// previous unread value if necessary. Never blocks.
func (n *Notifier) Publish(e StateEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for s := range n.subs {
		select {
		case s.ch <- e:
		default:
			// Mailbox full: drop the stale value, then retry once. The
			// second send can only fail if the receiver raced us and took
			// the fresh slot, in which case it will also see e or newer.
			select {
			case <-s.ch:
			default:
			}
			select {
			case s.ch <- e:
			default:
			}
		}
	}
}

// Events returns the receive side of the subscription's mailbox.
func (s *Subscription) Events() <-chan StateEvent { return s.ch }

// Close unregisters the subscription. The mailbox channel is left open; a
// pending event may still be read after Close.
func (s *Subscription) Close() {
	s.n.mu.Lock()
	delete(s.n.subs, s)
	s.n.mu.Unlock()
}
