// Package sim provides an in-memory heartbeat line for demos and tests: a
// Heart flips the line level once per beat and an Io polls it on a timer,
// mimicking the GPIO transport without hardware.
package sim

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sweeney/heartbeat-watchdog/internal/watchdog"
)

// DefaultPullInterval is how often Io samples the line level.
const DefaultPullInterval = time.Millisecond

// Line is the shared signal level.
type Line struct {
	level atomic.Bool
}

// NewLine returns a line at the low (falling) level.
func NewLine() *Line { return &Line{} }

// Set forces the line level directly. Tests use this to simulate glitches.
func (l *Line) Set(high bool) { l.level.Store(high) }

// Heart returns a beater attached to the line, sending Rising first.
func (l *Line) Heart() *Heart {
	return &Heart{line: l, next: true}
}

// Heart flips the line level on every beat. Not safe for concurrent use.
type Heart struct {
	line *Line
	next bool
}

// Beat sets the line to the next alternating level.
func (h *Heart) Beat() error {
	h.line.level.Store(h.next)
	h.next = !h.next
	return nil
}

// Io implements watchdog.Io by polling the line level.
type Io struct {
	line    *Line
	pull    time.Duration
	timeout time.Duration
}

// NewIo returns a poller over the line. timeout is the per-Get deadline,
// normally watchdog.Config.IOTimeout().
func NewIo(line *Line, pull, timeout time.Duration) *Io {
	if pull <= 0 {
		pull = DefaultPullInterval
	}
	return &Io{line: line, pull: pull, timeout: timeout}
}

// Get polls the line until it reads the expected level or the deadline
// passes, in which case it returns watchdog.ErrTimeout.
func (s *Io) Get(ctx context.Context, expected watchdog.Edge) (watchdog.Edge, error) {
	deadline := time.Now().Add(s.timeout)
	ticker := time.NewTicker(s.pull)
	defer ticker.Stop()

	for {
		if edge := watchdog.EdgeFromLevel(s.line.level.Load()); edge == expected {
			return edge, nil
		}
		if time.Now().After(deadline) {
			return watchdog.Falling, watchdog.ErrTimeout
		}
		select {
		case <-ctx.Done():
			return watchdog.Falling, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Clear is a no-op: the line holds no backlog.
func (s *Io) Clear(ctx context.Context) error { return nil }
