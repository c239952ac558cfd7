// Package watchdog implements heartbeat supervision: it watches a peer that
// is required to alternate a binary edge value at a fixed cadence, and
// classifies the peer as Ok or Fault based on the timing and ordering of the
// observed edges.
//
// This package has NO I/O of its own. Transports implement the Io interface
// (see io.go); peers implement Heart. Time is always injectable via
// time.Time parameters in the pure decision logic.
package watchdog

import "time"

// Edge is the binary signal level carried by one beat. The values double as
// the wire encoding used by byte-oriented transports.
type Edge byte

const (
	Rising  Edge = '+'
	Falling Edge = '.'
)

// Not flips the edge. Peers must alternate edges on every beat.
func (e Edge) Not() Edge {
	if e == Rising {
		return Falling
	}
	return Rising
}

// String returns "RISING" or "FALLING".
func (e Edge) String() string {
	if e == Rising {
		return "RISING"
	}
	return "FALLING"
}

// EdgeFromByte decodes a wire byte. 1 and '+' are rising, everything else
// is falling.
func EdgeFromByte(b byte) Edge {
	if b == 1 || b == '+' {
		return Rising
	}
	return Falling
}

// EdgeFromLevel converts a logical line level to an edge (high = rising).
func EdgeFromLevel(high bool) Edge {
	if high {
		return Rising
	}
	return Falling
}

// State is the published liveness classification. A freshly created watchdog
// always starts in StateFault; there is no "unknown" state.
type State uint8

const (
	StateFault State = iota
	StateOk
)

// String returns "FAULT" or "OK".
func (s State) String() string {
	if s == StateOk {
		return "OK"
	}
	return "FAULT"
}

// Bool returns the single-bit representation used for atomic storage.
func (s State) Bool() bool { return s == StateOk }

// StateFromBool is the inverse of State.Bool.
func StateFromBool(b bool) State {
	if b {
		return StateOk
	}
	return StateFault
}

// FaultKind is the reason attached to a transition into StateFault.
type FaultKind uint8

const (
	// FaultInitial is the first-ever fault, published once at start-up.
	FaultInitial FaultKind = iota
	// FaultTimeout means no edge was observed before the I/O deadline.
	FaultTimeout
	// FaultWindow means an edge arrived too early for the configured window.
	FaultWindow
	// FaultOutOfOrder means the peer repeated an edge value instead of
	// alternating, more than once in a row.
	FaultOutOfOrder
)

// String returns the reason name as published in events.
func (k FaultKind) String() string {
	switch k {
	case FaultInitial:
		return "INITIAL"
	case FaultTimeout:
		return "TIMEOUT"
	case FaultWindow:
		return "WINDOW"
	case FaultOutOfOrder:
		return "OUT_OF_ORDER"
	}
	return "UNKNOWN"
}

// StateEvent is the payload delivered to subscribers. It carries strictly
// more information than State: Kind holds the reason for fault events and is
// meaningless when State is StateOk.
type StateEvent struct {
	State State
	Kind  FaultKind
}

// OkEvent returns the event published on recovery.
func OkEvent() StateEvent { return StateEvent{State: StateOk} }

// FaultEvent returns a fault event with the given reason.
func FaultEvent(kind FaultKind) StateEvent {
	return StateEvent{State: StateFault, Kind: kind}
}

// String renders the event for logs, e.g. "FAULT(TIMEOUT)" or "OK".
func (e StateEvent) String() string {
	if e.State == StateOk {
		return "OK"
	}
	return "FAULT(" + e.Kind.String() + ")"
}

// RangeKind selects the beat acceptance policy.
type RangeKind uint8

const (
	// RangeTimeout accepts any edge arriving within the bound; late edges
	// are rejected via the I/O timeout path only.
	RangeTimeout RangeKind = iota
	// RangeWindow additionally rejects edges arriving earlier than
	// interval - D since the previous accepted poll.
	RangeWindow
)

// Range is the beat acceptance policy: a kind plus its duration bound.
type Range struct {
	Kind RangeKind
	D    time.Duration
}

// TimeoutRange returns a single-upper-bound policy.
func TimeoutRange(d time.Duration) Range {
	return Range{Kind: RangeTimeout, D: d}
}

// WindowRange returns a two-sided policy with half-width d around the
// expected beat instant.
func WindowRange(d time.Duration) Range {
	return Range{Kind: RangeWindow, D: d}
}
