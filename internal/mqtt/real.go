package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/heartbeat-watchdog/internal/watchdog"
)

// backlogCapacity bounds how many messages are held across a broker outage.
const backlogCapacity = 64

// RealPublisher publishes to an actual MQTT broker. Messages that cannot be
// delivered while the broker is unreachable are queued and replayed on
// reconnect, oldest first.
type RealPublisher struct {
	client paho.Client

	mu  sync.Mutex
	buf *backlog
}

// NewRealPublisher creates a publisher connected to the given broker.
func NewRealPublisher(broker string) (*RealPublisher, error) {
	p := &RealPublisher{buf: newBacklog(backlogCapacity)}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("heartbeat-watchdog").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(p.replay)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	p.client = client
	return p, nil
}

// PublishState sends a state transition to the broker. Fault transitions are
// retained so a late subscriber immediately sees the bad state.
func (p *RealPublisher) PublishState(event watchdog.StateEvent, at time.Time) error {
	payload, err := FormatPayload(event, at)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	retained := event.State == watchdog.StateFault
	// QoS 1: a missed fault notification defeats the point of a watchdog.
	return p.publish(Topic, 1, retained, payload)
}

// PublishSystem sends a system lifecycle event to the broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(TopicSystem, 1, event.Retained, payload)
}

func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnected() {
		p.enqueue(pendingMsg{topic: topic, qos: qos, retained: retained, payload: payload})
		return nil
	}
	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (p *RealPublisher) enqueue(m pendingMsg) {
	p.mu.Lock()
	p.buf.push(m)
	p.mu.Unlock()
}

// replay flushes the backlog after (re)connecting. Runs on paho's handler
// goroutine.
func (p *RealPublisher) replay(client paho.Client) {
	p.mu.Lock()
	msgs := p.buf.take()
	p.mu.Unlock()
	if len(msgs) == 0 {
		return
	}
	for _, m := range msgs {
		token := client.Publish(m.topic, m.qos, m.retained, m.payload)
		token.WaitTimeout(5 * time.Second)
	}
}

// IsConnected reports whether the broker connection is active.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
