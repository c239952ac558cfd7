//go:build !linux

package gpio

import (
	"context"
	"errors"
	"time"

	"github.com/sweeney/heartbeat-watchdog/internal/watchdog"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// Line is not available on non-Linux platforms.
type Line struct{}

// NewLine returns an error on non-Linux platforms.
func NewLine(cfg LineConfig, timeout time.Duration) (*Line, error) {
	return nil, errUnsupported
}

// Get is not implemented on non-Linux platforms.
func (l *Line) Get(ctx context.Context, expected watchdog.Edge) (watchdog.Edge, error) {
	return watchdog.Falling, errUnsupported
}

// Clear is not implemented on non-Linux platforms.
func (l *Line) Clear(ctx context.Context) error { return errUnsupported }

// Close is a no-op on non-Linux platforms.
func (l *Line) Close() error { return nil }

// Heart is not available on non-Linux platforms.
type Heart struct{}

// NewHeart returns an error on non-Linux platforms.
func NewHeart(chipName string, offset int) (*Heart, error) {
	return nil, errUnsupported
}

// Beat is not implemented on non-Linux platforms.
func (h *Heart) Beat() error { return errUnsupported }

// Close is a no-op on non-Linux platforms.
func (h *Heart) Close() error { return nil }
