package main

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/heartbeat-watchdog/internal/config"
	"github.com/sweeney/heartbeat-watchdog/internal/mqtt"
	"github.com/sweeney/heartbeat-watchdog/internal/status"
	"github.com/sweeney/heartbeat-watchdog/internal/watchdog"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("", "", "", 0, "", "")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.IO.Kind != config.BackendUDP {
		t.Errorf("io kind: got %q, want udp", cfg.IO.Kind)
	}
	if cfg.Watchdog.IntervalMs != 100 {
		t.Errorf("interval_ms: got %d, want 100", cfg.Watchdog.IntervalMs)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	cfg, err := loadConfig("", "sim", "", 250*time.Millisecond, "tcp://broker:1883", ":8080")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.IO.Kind != config.BackendSim {
		t.Errorf("io kind: got %q, want sim", cfg.IO.Kind)
	}
	if cfg.Watchdog.IntervalMs != 250 {
		t.Errorf("interval_ms: got %d, want 250", cfg.Watchdog.IntervalMs)
	}
	if cfg.MQTT.Broker != "tcp://broker:1883" {
		t.Errorf("broker: got %q", cfg.MQTT.Broker)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("http addr: got %q", cfg.HTTP.Addr)
	}
}

func TestLoadConfigRejectsBadOverride(t *testing.T) {
	if _, err := loadConfig("", "carrier-pigeon", "", 0, "", ""); err == nil {
		t.Fatal("expected validation error for unknown backend")
	}
}

type loopHarness struct {
	notifier *watchdog.Notifier
	sub      *watchdog.Subscription
	tracker  *status.Tracker
	sig      chan os.Signal
	done     chan error
	result   chan error
}

func startLoop(t *testing.T, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus) *loopHarness {
	t.Helper()
	h := &loopHarness{
		notifier: watchdog.NewNotifier(),
		tracker:  status.NewTracker(time.Now(), status.Config{Backend: "sim"}),
		sig:      make(chan os.Signal, 1),
		done:     make(chan error, 1),
		result:   make(chan error, 1),
	}
	h.sub = h.notifier.Subscribe()
	go func() {
		h.result <- eventLoop(h.sub, publisher, mqttStatus, h.tracker, time.Now, h.sig, h.done)
	}()
	return h
}

// waitForOkCount polls the tracker until the loop has processed the expected
// number of OK transitions.
func (h *loopHarness) waitForOkCount(t *testing.T, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.tracker.Snapshot().Counts.Ok >= want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("tracker never reached %d OK transitions", want)
}

func (h *loopHarness) stop(t *testing.T) error {
	t.Helper()
	h.sig <- syscall.SIGINT
	select {
	case err := <-h.result:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("event loop did not stop")
		return nil
	}
}

func TestEventLoopForwardsEvents(t *testing.T) {
	publisher := mqtt.NewFakePublisher()
	publisher.Connected = true
	h := startLoop(t, publisher, publisher)

	h.notifier.Publish(watchdog.OkEvent())
	h.waitForOkCount(t, 1)

	if err := h.stop(t); err != nil {
		t.Fatalf("event loop: %v", err)
	}

	if len(publisher.States) != 1 {
		t.Fatalf("published states: got %d, want 1", len(publisher.States))
	}
	if publisher.States[0].Event != watchdog.OkEvent() {
		t.Errorf("published event: got %v, want OK", publisher.States[0].Event)
	}

	snap := h.tracker.Snapshot()
	if snap.State != watchdog.StateOk {
		t.Errorf("tracker state: got %v, want OK", snap.State)
	}
	if !snap.MQTTConnected {
		t.Error("expected tracker to record mqtt connected")
	}
}

func TestEventLoopPublishesShutdownEvent(t *testing.T) {
	publisher := mqtt.NewFakePublisher()
	h := startLoop(t, publisher, publisher)

	if err := h.stop(t); err != nil {
		t.Fatalf("event loop: %v", err)
	}

	if len(publisher.SystemEvents) != 1 {
		t.Fatalf("system events: got %d, want 1", len(publisher.SystemEvents))
	}
	ev := publisher.SystemEvents[0]
	if ev.Event != "SHUTDOWN" {
		t.Errorf("event: got %q, want SHUTDOWN", ev.Event)
	}
	if ev.Reason != "SIGINT" {
		t.Errorf("reason: got %q, want SIGINT", ev.Reason)
	}
	if !ev.Retained {
		t.Error("shutdown event should be retained")
	}

	var sj status.StatusJSON
	if err := json.Unmarshal(publisher.SystemPayloads[0], &sj); err != nil {
		t.Fatalf("shutdown payload JSON: %v", err)
	}
	if sj.Status.Event != "SHUTDOWN" {
		t.Errorf("payload event: got %q, want SHUTDOWN", sj.Status.Event)
	}
	if sj.Status.State != "FAULT" {
		t.Errorf("payload state: got %q, want FAULT", sj.Status.State)
	}
}

func TestEventLoopSurvivesPublishFailure(t *testing.T) {
	publisher := mqtt.NewFakePublisher()
	publisher.PublishError = errors.New("broker gone")
	h := startLoop(t, publisher, publisher)

	h.notifier.Publish(watchdog.FaultEvent(watchdog.FaultTimeout))

	// The failed publish must not kill the loop; the tracker still updates.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.tracker.Snapshot().Counts.Timeout >= 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if h.tracker.Snapshot().Counts.Timeout != 1 {
		t.Fatal("tracker never saw the timeout fault")
	}

	if err := h.stop(t); err != nil {
		t.Fatalf("event loop: %v", err)
	}
}

func TestEventLoopWithoutMQTT(t *testing.T) {
	h := startLoop(t, nil, nil)

	h.notifier.Publish(watchdog.OkEvent())
	h.waitForOkCount(t, 1)

	if err := h.stop(t); err != nil {
		t.Fatalf("event loop: %v", err)
	}
}

func TestEventLoopReportsFatalStop(t *testing.T) {
	publisher := mqtt.NewFakePublisher()
	h := startLoop(t, publisher, publisher)

	h.done <- errors.New("line vanished")

	select {
	case err := <-h.result:
		if err == nil || !strings.Contains(err.Error(), "line vanished") {
			t.Fatalf("expected wrapped fatal error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event loop did not return on fatal stop")
	}
}
