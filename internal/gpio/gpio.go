// Package gpio provides a digital-line heartbeat transport using the Linux
// GPIO character device. The watchdog side polls an input line until it
// reaches the expected level; the heart side toggles an output line once per
// beat. The real implementation is Linux-only; other platforms get a stub.
package gpio

import "time"

// Defaults for Raspberry Pi style boards.
const (
	DefaultChip         = "gpiochip0"
	DefaultPullInterval = 2 * time.Millisecond
)

// LineConfig describes the input line the watchdog observes.
type LineConfig struct {
	// Chip is the gpiochip device name, e.g. "gpiochip0".
	Chip string
	// Line is the line offset on the chip.
	Line int
	// PullInterval is how often the raw level is sampled while waiting for
	// the expected edge.
	PullInterval time.Duration
}

func (c LineConfig) withDefaults() LineConfig {
	if c.Chip == "" {
		c.Chip = DefaultChip
	}
	if c.PullInterval <= 0 {
		c.PullInterval = DefaultPullInterval
	}
	return c
}
