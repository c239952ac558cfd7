// Package modbus provides a heartbeat transport over a Modbus coil. The
// peer toggles a coil once per beat; the watchdog polls the coil until it
// matches the expected edge, the same way the GPIO backend samples a line.
// The transport sits behind the CoilReader interface so tests run against a
// fake instead of a TCP endpoint.
package modbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomodbus "github.com/goburrow/modbus"

	"github.com/sweeney/heartbeat-watchdog/internal/watchdog"
)

// DefaultPullInterval is how often the coil is sampled while waiting for
// the expected edge.
const DefaultPullInterval = 10 * time.Millisecond

// CoilReader is the subset of a Modbus client the watchdog needs.
type CoilReader interface {
	// ReadCoils returns coil states packed LSB-first, per the Modbus spec.
	ReadCoils(address, quantity uint16) ([]byte, error)
}

// Config describes the source device and coil.
type Config struct {
	// Endpoint is the Modbus TCP endpoint, e.g. "10.0.0.5:502".
	Endpoint string
	// UnitID is the Modbus unit (slave) identifier.
	UnitID byte
	// Coil is the coil address carrying the heartbeat.
	Coil uint16
	// PullInterval is the coil sampling period.
	PullInterval time.Duration
	// ConnectTimeout bounds connection establishment and individual
	// transactions.
	ConnectTimeout time.Duration
}

// Io implements watchdog.Io by polling a coil.
type Io struct {
	reader  CoilReader
	handler *gomodbus.TCPClientHandler
	coil    uint16
	pull    time.Duration
	timeout time.Duration
}

// New connects to the Modbus TCP endpoint. timeout is the per-Get deadline,
// normally watchdog.Config.IOTimeout().
func New(cfg Config, timeout time.Duration) (*Io, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus: endpoint required")
	}
	if cfg.PullInterval <= 0 {
		cfg.PullInterval = DefaultPullInterval
	}

	handler := gomodbus.NewTCPClientHandler(cfg.Endpoint)
	handler.SlaveId = cfg.UnitID
	if cfg.ConnectTimeout > 0 {
		handler.Timeout = cfg.ConnectTimeout
	}
	if err := handler.Connect(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Endpoint, err)
	}

	return &Io{
		reader:  gomodbus.NewClient(handler),
		handler: handler,
		coil:    cfg.Coil,
		pull:    cfg.PullInterval,
		timeout: timeout,
	}, nil
}

// NewWithReader builds an Io over an existing transport. Used by tests.
func NewWithReader(r CoilReader, coil uint16, pull, timeout time.Duration) *Io {
	if pull <= 0 {
		pull = DefaultPullInterval
	}
	return &Io{reader: r, coil: coil, pull: pull, timeout: timeout}
}

// Get polls the coil until it matches the expected edge or the deadline
// passes, in which case it returns watchdog.ErrTimeout. Transport errors are
// fatal.
func (m *Io) Get(ctx context.Context, expected watchdog.Edge) (watchdog.Edge, error) {
	deadline := time.Now().Add(m.timeout)
	ticker := time.NewTicker(m.pull)
	defer ticker.Stop()

	for {
		res, err := m.reader.ReadCoils(m.coil, 1)
		if err != nil {
			return watchdog.Falling, fmt.Errorf("read coil %d: %w", m.coil, err)
		}
		if len(res) == 0 {
			return watchdog.Falling, fmt.Errorf("read coil %d: empty response", m.coil)
		}
		if edge := watchdog.EdgeFromLevel(res[0]&0x01 != 0); edge == expected {
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

// Clear is a no-op: a coil holds no backlog, only the current state.
func (m *Io) Clear(ctx context.Context) error { return nil }

// Close closes the TCP connection if this Io owns one.
func (m *Io) Close() error {
	if m.handler == nil {
		return nil
	}
	return m.handler.Close()
}
