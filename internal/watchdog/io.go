package watchdog

import "context"

// Io is the transport capability the watchdog polls. Implementations exist
// for GPIO lines, UDP sockets, Modbus coils and an in-memory simulated line;
// the orchestrator owns its Io exclusively and never calls it concurrently.
type Io interface {
	// Get blocks until the transport observes an edge or its deadline
	// (Config.IOTimeout) elapses. On deadline it must return an error
	// recognised by IsTimeout; any other error is fatal to the run loop.
	//
	// The expected edge lets level-sampled transports (GPIO, coils) detect
	// a change: they poll the raw level until it equals expected. Message
	// transports may ignore it and return whatever arrived.
	Get(ctx context.Context, expected Edge) (Edge, error)

	// Clear discards any buffered stale signal (e.g. queued datagrams) so
	// the next Get observes only fresh data. Best effort.
	Clear(ctx context.Context) error
}

// Heart is the peer-side capability: emit one beat, alternating the edge
// value on every call.
type Heart interface {
	Beat() error
}
