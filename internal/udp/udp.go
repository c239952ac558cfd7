// Package udp provides a datagram heartbeat transport. The peer sends one
// byte per beat ('+' rising, '.' falling, raw 1 also counts as rising); the
// watchdog side reads with a deadline so a missing beat surfaces as a
// timeout. Clear drains the socket buffer so stale datagrams queued during a
// fault are not misread as fresh beats.
package udp

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sweeney/heartbeat-watchdog/internal/watchdog"
)

// Io implements watchdog.Io over a bound UDP socket.
type Io struct {
	conn    *net.UDPConn
	timeout time.Duration
}

// NewIo binds the listen address. timeout is the per-Get deadline, normally
// watchdog.Config.IOTimeout().
func NewIo(addr string, timeout time.Duration) (*Io, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	return &Io{conn: conn, timeout: timeout}, nil
}

// Addr returns the bound address (useful with a ":0" listen address).
func (io *Io) Addr() string {
	return io.conn.LocalAddr().String()
}

// Get reads the next heartbeat byte. The expected edge is ignored: datagrams
// carry the edge value explicitly. A read deadline expiry is reported as
// watchdog.ErrTimeout.
func (io *Io) Get(ctx context.Context, _ watchdog.Edge) (watchdog.Edge, error) {
	if err := ctx.Err(); err != nil {
		return watchdog.Falling, err
	}
	if err := io.conn.SetReadDeadline(time.Now().Add(io.timeout)); err != nil {
		return watchdog.Falling, fmt.Errorf("set deadline: %w", err)
	}
	var buf [1]byte
	for {
		n, err := io.conn.Read(buf[:])
		if err != nil {
			if watchdog.IsTimeout(err) {
				return watchdog.Falling, watchdog.ErrTimeout
			}
			return watchdog.Falling, fmt.Errorf("recv: %w", err)
		}
		if n > 0 {
			return watchdog.EdgeFromByte(buf[0]), nil
		}
	}
}

// Clear discards every datagram currently queued on the socket.
func (io *Io) Clear(ctx context.Context) error {
	if err := io.conn.SetReadDeadline(time.Now()); err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}
	var buf [1]byte
	for {
		if _, err := io.conn.Read(buf[:]); err != nil {
			if watchdog.IsTimeout(err) {
				return nil
			}
			return fmt.Errorf("drain: %w", err)
		}
	}
}

// Close closes the socket.
func (io *Io) Close() error {
	return io.conn.Close()
}

// Heart sends one alternating byte per beat to a fixed peer address. Not
// safe for concurrent use.
type Heart struct {
	conn *net.UDPConn
	next watchdog.Edge
}

// NewHeart connects to the watchdog's address.
func NewHeart(addr string) (*Heart, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Heart{conn: conn, next: watchdog.Rising}, nil
}

// Beat sends the next edge byte.
func (h *Heart) Beat() error {
	edge := h.next
	h.next = h.next.Not()
	if _, err := h.conn.Write([]byte{byte(edge)}); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// Close closes the socket.
func (h *Heart) Close() error {
	return h.conn.Close()
}
