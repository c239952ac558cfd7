package mqtt

import (
	"time"

	"github.com/sweeney/heartbeat-watchdog/internal/watchdog"
)

// StateRecord is one recorded PublishState call.
type StateRecord struct {
	Event watchdog.StateEvent
	At    time.Time
}

// FakePublisher records published events for test assertions.
type FakePublisher struct {
	// States contains all state transitions that were published.
	States []StateRecord

	// Payloads contains the JSON payloads for state transitions.
	Payloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by PublishState.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishState records the state transition.
func (f *FakePublisher) PublishState(event watchdog.StateEvent, at time.Time) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.States = append(f.States, StateRecord{Event: event, At: at})

	payload, err := FormatPayload(event, at)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}
