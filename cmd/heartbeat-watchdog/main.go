// Command heartbeat-watchdog supervises a peer heartbeat and publishes state
// transitions to MQTT and an HTTP status page.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/heartbeat-watchdog/internal/config"
	"github.com/sweeney/heartbeat-watchdog/internal/gpio"
	"github.com/sweeney/heartbeat-watchdog/internal/modbus"
	"github.com/sweeney/heartbeat-watchdog/internal/mqtt"
	"github.com/sweeney/heartbeat-watchdog/internal/sim"
	"github.com/sweeney/heartbeat-watchdog/internal/status"
	"github.com/sweeney/heartbeat-watchdog/internal/udp"
	"github.com/sweeney/heartbeat-watchdog/internal/watchdog"
	"github.com/sweeney/heartbeat-watchdog/internal/web"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	ioKind := flag.String("io", "", `heartbeat backend: "udp", "gpio", "modbus" or "sim" (overrides config)`)
	listen := flag.String("listen", "", "UDP listen address (overrides config)")
	interval := flag.Duration("interval", 0, "expected beat interval (overrides config)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", "HTTP status address (overrides config)")

	flag.Parse()

	cfg, err := loadConfig(*configPath, *ioKind, *listen, *interval, *broker, *httpAddr)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// loadConfig reads the optional config file and applies flag overrides on top.
func loadConfig(path, ioKind, listen string, interval time.Duration, broker, httpAddr string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if ioKind != "" {
		cfg.IO.Kind = ioKind
	}
	if listen != "" {
		cfg.IO.UDP.Listen = listen
	}
	if interval > 0 {
		cfg.Watchdog.IntervalMs = int(interval.Milliseconds())
	}
	if broker != "" {
		cfg.MQTT.Broker = broker
	}
	if httpAddr != "" {
		cfg.HTTP.Addr = httpAddr
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	wcfg := cfg.WatchdogSettings()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	io, closeIo, err := buildIo(ctx, cfg, wcfg)
	if err != nil {
		return err
	}
	defer closeIo()

	wd := watchdog.New(wcfg, io)

	tracker := status.NewTracker(time.Now(), cfg.StatusConfig())

	// MQTT is optional: an empty broker address runs the watchdog standalone.
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.MQTT.Broker != "" {
		real, err := mqtt.NewRealPublisher(cfg.MQTT.Broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer real.Close()
		publisher, mqttStatus = real, real

		snap := tracker.Snapshot()
		startup := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startup); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Printf("started: io=%s interval=%v range=%s(%v) warmup=%v min_beats=%d",
		cfg.IO.Kind, wcfg.Interval(), cfg.StatusConfig().RangeKind, wcfg.Range().D,
		wcfg.Warmup(), wcfg.MinBeats())

	sub := wd.Subscribe()
	defer sub.Close()

	done := make(chan error, 1)
	go func() { done <- wd.Run(ctx) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return eventLoop(sub, publisher, mqttStatus, tracker, time.Now, sigCh, done)
}

// eventLoop bridges watchdog state events to the log, the status tracker and
// MQTT until a signal arrives or the watchdog stops.
func eventLoop(sub *watchdog.Subscription, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, sig <-chan os.Signal, done <-chan error) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if publisher != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event := mqtt.SystemEvent{
					Timestamp:  now(),
					Event:      "SHUTDOWN",
					Reason:     signalName,
					Retained:   true,
					RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
				}
				if err := publisher.PublishSystem(event); err != nil {
					log.Printf("failed to publish shutdown event: %v", err)
				} else {
					log.Printf("published shutdown event")
				}
			}
			return nil

		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("watchdog stopped: %w", err)
			}
			return nil

		case e := <-sub.Events():
			t := now()
			log.Printf("event: %s", e)
			tracker.Update(e, t)
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			if publisher != nil {
				if err := publisher.PublishState(e, t); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}
		}
	}
}

// buildIo constructs the configured heartbeat backend. The returned closer
// releases whatever resources the backend holds.
func buildIo(ctx context.Context, cfg *config.Config, wcfg watchdog.Config) (watchdog.Io, func() error, error) {
	timeout := wcfg.IOTimeout()
	noClose := func() error { return nil }

	switch cfg.IO.Kind {
	case config.BackendUDP:
		io, err := udp.NewIo(cfg.IO.UDP.Listen, timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("init udp: %w", err)
		}
		return io, io.Close, nil

	case config.BackendGPIO:
		line, err := gpio.NewLine(gpio.LineConfig{
			Chip:         cfg.IO.GPIO.Chip,
			Line:         cfg.IO.GPIO.Line,
			PullInterval: time.Duration(cfg.IO.GPIO.PullIntervalMs) * time.Millisecond,
		}, timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("init gpio: %w", err)
		}
		return line, line.Close, nil

	case config.BackendModbus:
		io, err := modbus.New(modbus.Config{
			Endpoint:       cfg.IO.Modbus.Endpoint,
			UnitID:         cfg.IO.Modbus.UnitID,
			Coil:           cfg.IO.Modbus.Coil,
			PullInterval:   time.Duration(cfg.IO.Modbus.PullIntervalMs) * time.Millisecond,
			ConnectTimeout: time.Duration(cfg.IO.Modbus.TimeoutMs) * time.Millisecond,
		}, timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("init modbus: %w", err)
		}
		return io, io.Close, nil

	case config.BackendSim:
		// Demo mode: an in-process heart beats the line so the daemon can be
		// exercised without a peer.
		line := sim.NewLine()
		go runSimHeart(ctx, line.Heart(), wcfg.Interval())
		return sim.NewIo(line, 0, timeout), noClose, nil
	}

	return nil, nil, fmt.Errorf("unknown io kind %q", cfg.IO.Kind)
}

func runSimHeart(ctx context.Context, heart *sim.Heart, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := heart.Beat(); err != nil {
				log.Printf("sim heart: %v", err)
				return
			}
		}
	}
}
