package config

import (
	"time"

	"github.com/sweeney/heartbeat-watchdog/internal/status"
	"github.com/sweeney/heartbeat-watchdog/internal/watchdog"
)

// WatchdogSettings converts the file representation into a watchdog.Config,
// applying the documented defaults for unset fields.
func (c *Config) WatchdogSettings() watchdog.Config {
	interval := time.Duration(c.Watchdog.IntervalMs) * time.Millisecond
	cfg := watchdog.NewConfig(interval)

	if c.Watchdog.RangeMs > 0 {
		d := time.Duration(c.Watchdog.RangeMs) * time.Millisecond
		if c.Watchdog.RangeKind == RangeKindWindow {
			cfg = cfg.WithRange(watchdog.WindowRange(d))
		} else {
			cfg = cfg.WithRange(watchdog.TimeoutRange(d))
		}
	}
	if c.Watchdog.WarmupMs > 0 {
		cfg = cfg.WithWarmup(time.Duration(c.Watchdog.WarmupMs) * time.Millisecond)
	}
	if c.Watchdog.MinBeats > 0 {
		cfg = cfg.WithMinBeats(c.Watchdog.MinBeats)
	}
	return cfg
}

// StatusConfig returns the display copy of the effective configuration.
func (c *Config) StatusConfig() status.Config {
	wcfg := c.WatchdogSettings()
	kind := RangeKindTimeout
	if wcfg.Range().Kind == watchdog.RangeWindow {
		kind = RangeKindWindow
	}
	return status.Config{
		IntervalMs: wcfg.Interval().Milliseconds(),
		RangeKind:  kind,
		RangeMs:    wcfg.Range().D.Milliseconds(),
		WarmupMs:   wcfg.Warmup().Milliseconds(),
		MinBeats:   wcfg.MinBeats(),
		Backend:    c.IO.Kind,
		Broker:     c.MQTT.Broker,
		HTTPAddr:   c.HTTP.Addr,
	}
}
