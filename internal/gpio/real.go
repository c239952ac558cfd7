//go:build linux

package gpio

import (
	"context"
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/heartbeat-watchdog/internal/watchdog"
)

// Line implements watchdog.Io over a GPIO input line. It samples the raw
// level every PullInterval until the level matches the expected edge or the
// I/O deadline passes.
type Line struct {
	chip    *gpiocdev.Chip
	line    *gpiocdev.Line
	pull    time.Duration
	timeout time.Duration
}

// NewLine opens the chip and requests the input line. timeout is the per-Get
// deadline, normally watchdog.Config.IOTimeout().
func NewLine(cfg LineConfig, timeout time.Duration) (*Line, error) {
	cfg = cfg.withDefaults()

	chip, err := gpiocdev.NewChip(cfg.Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", cfg.Chip, err)
	}
	line, err := chip.RequestLine(cfg.Line, gpiocdev.AsInput)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request line %d: %w", cfg.Line, err)
	}
	return &Line{
		chip:    chip,
		line:    line,
		pull:    cfg.PullInterval,
		timeout: timeout,
	}, nil
}

// Get polls the line until it reads the expected level or the deadline
// passes, in which case it returns watchdog.ErrTimeout.
func (l *Line) Get(ctx context.Context, expected watchdog.Edge) (watchdog.Edge, error) {
	deadline := time.Now().Add(l.timeout)
	ticker := time.NewTicker(l.pull)
	defer ticker.Stop()

	for {
		v, err := l.line.Value()
		if err != nil {
			return watchdog.Falling, fmt.Errorf("read line: %w", err)
		}
		if edge := watchdog.EdgeFromLevel(v != 0); edge == expected {
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

// Clear is a no-op: a GPIO line holds no backlog, only the current level.
func (l *Line) Clear(ctx context.Context) error { return nil }

// Close releases the line and chip.
func (l *Line) Close() error {
	var errs []error
	if l.line != nil {
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// Heart drives an output line, flipping the level on every beat. Not safe
// for concurrent use; a heart has one owner.
type Heart struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	next bool
}

// NewHeart opens the chip and requests the output line, initially low.
func NewHeart(chipName string, offset int) (*Heart, error) {
	if chipName == "" {
		chipName = DefaultChip
	}
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}
	line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request output line %d: %w", offset, err)
	}
	return &Heart{chip: chip, line: line, next: true}, nil
}

// Beat sets the line to the next alternating level.
func (h *Heart) Beat() error {
	v := 0
	if h.next {
		v = 1
	}
	h.next = !h.next
	if err := h.line.SetValue(v); err != nil {
		return fmt.Errorf("set line: %w", err)
	}
	return nil
}

// Close releases the line and chip.
func (h *Heart) Close() error {
	var errs []error
	if h.line != nil {
		if err := h.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	if h.chip != nil {
		if err := h.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
