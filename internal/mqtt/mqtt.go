// Package mqtt publishes watchdog state transitions to an MQTT broker, with
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/heartbeat-watchdog/internal/watchdog"
)

// Topic is the MQTT topic for state transition events.
const Topic = "watchdog/heartbeat/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "watchdog/heartbeat/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishState sends a state transition to the broker.
	// Returns error if publishing fails (should not crash the daemon).
	PublishState(event watchdog.StateEvent, at time.Time) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g. startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g. "STARTUP", "SHUTDOWN"
	Reason     string // e.g. "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload for state transitions.
type Payload struct {
	Watchdog WatchdogPayload `json:"watchdog"`
}

// WatchdogPayload contains the transition details.
type WatchdogPayload struct {
	Timestamp string `json:"timestamp"`
	State     string `json:"state"`
	Reason    string `json:"reason,omitempty"`
}

// FormatPayload creates the JSON payload for a state transition.
func FormatPayload(event watchdog.StateEvent, at time.Time) ([]byte, error) {
	p := Payload{
		Watchdog: WatchdogPayload{
			Timestamp: at.UTC().Format(time.RFC3339),
			State:     event.State.String(),
		},
	}
	if event.State == watchdog.StateFault {
		p.Watchdog.Reason = event.Kind.String()
	}
	return json.Marshal(p)
}

// SystemPayload represents the MQTT message payload for system events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status
// snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}
