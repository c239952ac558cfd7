// Package config defines the daemon configuration file and its validation.
// The file is YAML; every field has a usable default so a minimal file (or
// none at all) still yields a runnable daemon.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Range kinds accepted in the config file.
const (
	RangeKindTimeout = "timeout"
	RangeKindWindow  = "window"
)

// Backend kinds accepted in the config file.
const (
	BackendUDP    = "udp"
	BackendGPIO   = "gpio"
	BackendModbus = "modbus"
	BackendSim    = "sim"
)

type Config struct {
	Watchdog WatchdogConfig `yaml:"watchdog"`
	IO       IOConfig       `yaml:"io"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	HTTP     HTTPConfig     `yaml:"http"`
}

// ---- WATCHDOG ----

type WatchdogConfig struct {
	IntervalMs int    `yaml:"interval_ms"`
	RangeKind  string `yaml:"range_kind"` // "timeout" or "window"
	RangeMs    int    `yaml:"range_ms"`   // 0 => interval + 10%
	WarmupMs   int    `yaml:"warmup_ms"`  // 0 => 2 * interval
	MinBeats   int    `yaml:"min_beats"`  // 0 => 2
}

// ---- IO BACKEND ----

type IOConfig struct {
	Kind   string       `yaml:"kind"` // "udp", "gpio", "modbus" or "sim"
	UDP    UDPConfig    `yaml:"udp"`
	GPIO   GPIOConfig   `yaml:"gpio"`
	Modbus ModbusConfig `yaml:"modbus"`
}

type UDPConfig struct {
	Listen string `yaml:"listen"`
}

type GPIOConfig struct {
	Chip           string `yaml:"chip"`
	Line           int    `yaml:"line"`
	PullIntervalMs int    `yaml:"pull_interval_ms"`
}

type ModbusConfig struct {
	Endpoint       string `yaml:"endpoint"`
	UnitID         uint8  `yaml:"unit_id"`
	Coil           uint16 `yaml:"coil"`
	PullIntervalMs int    `yaml:"pull_interval_ms"`
	TimeoutMs      int    `yaml:"timeout_ms"`
}

// ---- SURFACES ----

type MQTTConfig struct {
	Broker string `yaml:"broker"` // empty disables MQTT
}

type HTTPConfig struct {
	Addr string `yaml:"addr"` // empty disables the status server
}

// Default returns the configuration used when no file is given: a UDP
// watchdog on :9999 with a 100ms beat, no MQTT, no HTTP.
func Default() *Config {
	return &Config{
		Watchdog: WatchdogConfig{
			IntervalMs: 100,
			RangeKind:  RangeKindTimeout,
		},
		IO: IOConfig{
			Kind: BackendUDP,
			UDP:  UDPConfig{Listen: ":9999"},
		},
	}
}

// Load reads and parses the YAML file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
