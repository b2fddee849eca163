// Package led pushes resolved colors to LED devices over MQTT.
package led

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/justestif/spotify-iot-server/internal/color"
)

// DefaultTopic is the retained topic devices subscribe to.
const DefaultTopic = "spotify-iot/led"

// DefaultPublishTimeout bounds how long one frame may wait on the broker.
const DefaultPublishTimeout = 2 * time.Second

// Frame is one color update as published to devices.
type Frame struct {
	R      int       `json:"r"`
	G      int       `json:"g"`
	B      int       `json:"b"`
	Song   string    `json:"song"`
	Artist string    `json:"artist"`
	Mode   string    `json:"mode"`
	Temp   *float64  `json:"temp,omitempty"`
	At     time.Time `json:"at"`
}

// RGB returns the frame color.
func (f Frame) RGB() color.RGB {
	return color.RGB{R: f.R, G: f.G, B: f.B}
}

// Publisher delivers frames to devices.
type Publisher interface {
	// Publish sends f unless it carries the same color as the last frame sent.
	// It reports whether a message went out.
	Publish(ctx context.Context, f Frame) (bool, error)
	Connected() bool
}

// Notifier publishes frames retained to one topic, skipping unchanged colors.
type Notifier struct {
	broker  Broker
	topic   string
	timeout time.Duration
	logger  *slog.Logger

	// mu guards last and seq; it is never held while waiting on the broker.
	mu   sync.Mutex
	last *color.RGB
	seq  uint64
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithPublishTimeout overrides DefaultPublishTimeout.
func WithPublishTimeout(d time.Duration) NotifierOption {
	return func(n *Notifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// NewNotifier creates a Notifier. An empty topic means DefaultTopic.
func NewNotifier(broker Broker, topic string, logger *slog.Logger, opts ...NotifierOption) *Notifier {
	if topic == "" {
		topic = DefaultTopic
	}
	if logger == nil {
		logger = slog.Default()
	}
	n := &Notifier{broker: broker, topic: topic, timeout: DefaultPublishTimeout, logger: logger}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Publish implements Publisher. Failed publishes are retried on the next frame.
// The broker wait is bounded by the publish timeout even when ctx has no deadline.
func (n *Notifier) Publish(ctx context.Context, f Frame) (bool, error) {
	rgb := f.RGB()
	seq, ok := n.begin(rgb)
	if !ok {
		return false, nil
	}

	if f.At.IsZero() {
		f.At = time.Now().UTC()
	}
	payload, err := json.Marshal(f)
	if err != nil {
		return false, fmt.Errorf("encoding frame: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	if err := n.broker.Publish(ctx, n.topic, 1, true, payload); err != nil {
		return false, err
	}

	n.commit(seq, rgb)

	n.logger.Info("Published LED color", "topic", n.topic, "rgb", rgb, "song", f.Song)
	return true, nil
}

// begin reports whether rgb needs sending and numbers the attempt.
func (n *Notifier) begin(rgb color.RGB) (uint64, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.last != nil && *n.last == rgb {
		return 0, false
	}
	n.seq++
	return n.seq, true
}

// commit records rgb as sent unless a later attempt has started since.
func (n *Notifier) commit(seq uint64, rgb color.RGB) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if seq == n.seq {
		n.last = &rgb
	}
}

// Connected reports whether the broker connection is open.
func (n *Notifier) Connected() bool {
	return n.broker.IsConnected()
}

// Close disconnects from the broker.
func (n *Notifier) Close() {
	n.broker.Disconnect()
}

// Noop is a Publisher used when no broker is configured.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, Frame) (bool, error) { return false, nil }

// Connected implements Publisher.
func (Noop) Connected() bool { return false }

var (
	_ Publisher = (*Notifier)(nil)
	_ Publisher = Noop{}
)
