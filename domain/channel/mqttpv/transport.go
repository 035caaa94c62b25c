// Package mqttpv carries live detector channels over an MQTT broker. Each
// channel maps to a retained topic "<prefix>/<channel name>" whose payload is a
// msgpack-encoded value, so late subscribers receive the last known value.
package mqttpv

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/soocke/pv-viewer-go/domain/channel"
)

// Options configures the broker connection.
type Options struct {
	Broker         string // host:port
	ClientID       string // generated when empty
	TopicPrefix    string
	QoS            byte
	ConnectTimeout time.Duration
}

// Transport implements channel.Transport on top of a paho client.
type Transport struct {
	opts   Options
	client mqtt.Client
	logger *slog.Logger

	mu       sync.Mutex
	channels map[string]*channel.Broadcast
	closed   bool

	received     atomic.Uint64
	decodeErrors atomic.Uint64
}

// Stats contains transport statistics.
type Stats struct {
	Connected    bool
	Channels     int
	Received     uint64
	DecodeErrors uint64
}

// Dial connects to the broker and returns a ready transport.
func Dial(ctx context.Context, opts Options, logger *slog.Logger) (*Transport, error) {
	if opts.Broker == "" {
		return nil, fmt.Errorf("mqtt broker is required")
	}
	if opts.ClientID == "" {
		opts.ClientID = "pv-viewer-" + uuid.NewString()
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	t := newTransport(opts, logger)

	co := mqtt.NewClientOptions()
	co.AddBroker(brokerURL(opts.Broker))
	co.SetClientID(opts.ClientID)
	co.SetAutoReconnect(true)
	co.SetConnectRetry(true)
	co.SetConnectRetryInterval(2 * time.Second)
	co.SetMaxReconnectInterval(30 * time.Second)
	co.OnConnect = func(c mqtt.Client) {
		if t.logger != nil {
			t.logger.Info("mqtt connection established", "broker", opts.Broker, "client_id", opts.ClientID)
		}
		t.resubscribe()
	}
	co.OnConnectionLost = func(c mqtt.Client, err error) {
		if t.logger != nil {
			t.logger.Warn("mqtt connection lost, will auto-reconnect", "error", err, "broker", opts.Broker)
		}
	}
	t.client = mqtt.NewClient(co)

	if t.logger != nil {
		t.logger.Info("connecting to mqtt broker", "broker", opts.Broker)
	}
	token := t.client.Connect()
	select {
	case <-token.Done():
	case <-time.After(opts.ConnectTimeout):
		t.client.Disconnect(0)
		return nil, fmt.Errorf("mqtt connection timeout")
	case <-ctx.Done():
		t.client.Disconnect(0)
		return nil, ctx.Err()
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connection failed: %w", err)
	}
	return t, nil
}

func newTransport(opts Options, logger *slog.Logger) *Transport {
	return &Transport{opts: opts, logger: logger, channels: make(map[string]*channel.Broadcast)}
}

func brokerURL(broker string) string {
	if strings.Contains(broker, "://") {
		return broker
	}
	return "tcp://" + broker
}

// Topic returns the MQTT topic carrying the named channel.
func (t *Transport) Topic(name string) string {
	if t.opts.TopicPrefix == "" {
		return name
	}
	return strings.TrimSuffix(t.opts.TopicPrefix, "/") + "/" + name
}

// Channel returns the named channel, subscribing to its topic on first use.
func (t *Transport) Channel(name string) (channel.Channel, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, channel.ErrClosed
	}
	if b, ok := t.channels[name]; ok {
		t.mu.Unlock()
		return b, nil
	}
	b := channel.NewBroadcast(name)
	t.channels[name] = b
	t.mu.Unlock()

	if err := t.subscribe(name); err != nil {
		t.mu.Lock()
		delete(t.channels, name)
		t.mu.Unlock()
		return nil, err
	}
	return b, nil
}

func (t *Transport) subscribe(name string) error {
	if t.client == nil {
		return nil
	}
	token := t.client.Subscribe(t.Topic(name), t.opts.QoS, func(_ mqtt.Client, msg mqtt.Message) {
		t.handle(name, msg.Payload())
	})
	if !token.WaitTimeout(t.opts.ConnectTimeout) {
		return fmt.Errorf("mqtt subscribe %s: timeout", name)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", name, err)
	}
	return nil
}

// resubscribe restores topic subscriptions after a reconnect with a clean session.
func (t *Transport) resubscribe() {
	t.mu.Lock()
	names := make([]string, 0, len(t.channels))
	for name := range t.channels {
		names = append(names, name)
	}
	t.mu.Unlock()
	for _, name := range names {
		go func(name string) {
			if err := t.subscribe(name); err != nil && t.logger != nil {
				t.logger.Error("mqtt resubscribe", "channel", name, "error", err)
			}
		}(name)
	}
}

func (t *Transport) handle(name string, payload []byte) {
	v, err := Decode(payload)
	if err != nil {
		t.decodeErrors.Add(1)
		if t.logger != nil {
			t.logger.Warn("dropping undecodable update", "channel", name, "size", len(payload), "error", err)
		}
		return
	}
	t.mu.Lock()
	b := t.channels[name]
	t.mu.Unlock()
	if b == nil {
		return
	}
	t.received.Add(1)
	b.Publish(v)
}

// Publish sends a retained update on the named channel.
func (t *Transport) Publish(name string, data ...float64) error {
	payload, err := Encode(channel.Value{Data: data, Timestamp: time.Now()})
	if err != nil {
		return err
	}
	if t.client == nil || !t.client.IsConnected() {
		return fmt.Errorf("mqtt not connected")
	}
	token := t.client.Publish(t.Topic(name), t.opts.QoS, true, payload)
	if !token.WaitTimeout(2 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	return token.Error()
}

// Stats returns transport statistics.
func (t *Transport) Stats() Stats {
	t.mu.Lock()
	n := len(t.channels)
	t.mu.Unlock()
	return Stats{
		Connected:    t.client != nil && t.client.IsConnected(),
		Channels:     n,
		Received:     t.received.Load(),
		DecodeErrors: t.decodeErrors.Load(),
	}
}

// Close unsubscribes every channel and disconnects.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	topics := make([]string, 0, len(t.channels))
	for name := range t.channels {
		topics = append(topics, t.Topic(name))
	}
	t.mu.Unlock()

	if t.client != nil && t.client.IsConnected() {
		if len(topics) > 0 {
			t.client.Unsubscribe(topics...).WaitTimeout(time.Second)
		}
		t.client.Disconnect(250)
		if t.logger != nil {
			t.logger.Info("mqtt disconnected")
		}
	}
	return nil
}

var _ channel.Transport = (*Transport)(nil)
var _ channel.Publisher = (*Transport)(nil)
