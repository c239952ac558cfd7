// Package status provides a thread-safe status tracker for the watchdog
// daemon. It is read by HTTP handlers and embedded into MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/heartbeat-watchdog/internal/watchdog"
)

// Config contains daemon configuration for display.
type Config struct {
	IntervalMs int64
	RangeKind  string
	RangeMs    int64
	WarmupMs   int64
	MinBeats   int
	Backend    string
	Broker     string
	HTTPAddr   string
}

// EventCounts tracks the number of published transitions since startup, by
// outcome.
type EventCounts struct {
	Ok         int
	Timeout    int
	Window     int
	OutOfOrder int
}

// Snapshot is a point-in-time view of daemon state. It is a value type,
// safe to use after the lock is released.
type Snapshot struct {
	State          watchdog.State
	LastFault      watchdog.FaultKind
	Counts         EventCounts
	StartTime      time.Time
	Now            time.Time
	LastTransition time.Time
	MQTTConnected  bool
	Config         Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config. The
// state starts at FAULT with reason INITIAL, matching the watchdog itself.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:     watchdog.StateFault,
			LastFault: watchdog.FaultInitial,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records a published state event. Called from the daemon's event
// loop for every transition.
func (t *Tracker) Update(e watchdog.StateEvent, at time.Time) {
	t.mu.Lock()
	t.snap.State = e.State
	t.snap.LastTransition = at
	if e.State == watchdog.StateOk {
		t.snap.Counts.Ok++
	} else {
		t.snap.LastFault = e.Kind
		switch e.Kind {
		case watchdog.FaultTimeout:
			t.snap.Counts.Timeout++
		case watchdog.FaultWindow:
			t.snap.Counts.Window++
		case watchdog.FaultOutOfOrder:
			t.snap.Counts.OutOfOrder++
		}
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
