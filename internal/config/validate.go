package config

import "fmt"

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	w := cfg.Watchdog
	if w.IntervalMs <= 0 {
		return fmt.Errorf("watchdog: interval_ms must be > 0")
	}
	switch w.RangeKind {
	case "", RangeKindTimeout, RangeKindWindow:
	default:
		return fmt.Errorf("watchdog: range_kind %q is not %q or %q",
			w.RangeKind, RangeKindTimeout, RangeKindWindow)
	}
	if w.RangeMs < 0 {
		return fmt.Errorf("watchdog: range_ms must be >= 0")
	}
	if w.RangeKind == RangeKindWindow && w.RangeMs >= w.IntervalMs {
		return fmt.Errorf("watchdog: window range_ms (%d) must be smaller than interval_ms (%d)",
			w.RangeMs, w.IntervalMs)
	}
	if w.WarmupMs < 0 {
		return fmt.Errorf("watchdog: warmup_ms must be >= 0")
	}
	if w.MinBeats < 0 {
		return fmt.Errorf("watchdog: min_beats must be >= 0")
	}

	switch cfg.IO.Kind {
	case BackendUDP:
		if cfg.IO.UDP.Listen == "" {
			return fmt.Errorf("io: udp backend requires listen address")
		}
	case BackendGPIO:
		if cfg.IO.GPIO.Line < 0 {
			return fmt.Errorf("io: gpio line must be >= 0")
		}
	case BackendModbus:
		if cfg.IO.Modbus.Endpoint == "" {
			return fmt.Errorf("io: modbus backend requires endpoint")
		}
	case BackendSim:
	default:
		return fmt.Errorf("io: kind %q is not one of udp, gpio, modbus, sim", cfg.IO.Kind)
	}

	return nil
}
