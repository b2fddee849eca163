package led

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const clientIDPrefix = "spotify-iot-server-"

// ErrNotConnected is returned by Publish while no broker connection is open.
var ErrNotConnected = errors.New("mqtt connection not open")

// Broker is the subset of an MQTT client the publisher needs.
type Broker interface {
	Connect(ctx context.Context) error
	Disconnect()
	Publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error
	// IsConnected reports whether a connection is open right now.
	// It is false while the client is still connecting or reconnecting.
	IsConnected() bool
}

// MQTTConfig holds the broker connection settings.
type MQTTConfig struct {
	Broker   string // e.g. tcp://localhost:1883
	Username string
	Password string
	ClientID string // Generated when empty
}

// mqttBroker implements Broker using the Paho MQTT client.
type mqttBroker struct {
	client pahomqtt.Client
	broker string
	logger *slog.Logger
}

// NewMQTTBroker creates a Paho-backed Broker. Call Connect before publishing.
func NewMQTTBroker(cfg MQTTConfig, logger *slog.Logger) Broker {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = clientIDPrefix + uuid.NewString()
	}
	opts.SetClientID(clientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(pahomqtt.Client) {
		logger.Info("Connected to MQTT broker", "broker", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ pahomqtt.Client, err error) {
		logger.Warn("MQTT connection lost", "error", err)
	}
	opts.OnReconnecting = func(pahomqtt.Client, *pahomqtt.ClientOptions) {
		logger.Info("MQTT reconnecting...")
	}

	return &mqttBroker{
		client: pahomqtt.NewClient(opts),
		broker: cfg.Broker,
		logger: logger,
	}
}

// Connect establishes a connection to the MQTT broker.
func (m *mqttBroker) Connect(ctx context.Context) error {
	m.logger.Info("Connecting to MQTT broker", "broker", m.broker)
	return wait(ctx, m.client.Connect(), "connecting to MQTT broker")
}

// Disconnect closes the connection to the MQTT broker.
func (m *mqttBroker) Disconnect() {
	m.logger.Info("Disconnecting from MQTT broker")
	m.client.Disconnect(250)
}

// Publish publishes a message and waits for the broker to accept it.
// It fails fast with ErrNotConnected instead of queueing behind a reconnect.
func (m *mqttBroker) Publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error {
	if !m.client.IsConnectionOpen() {
		return fmt.Errorf("publishing to %s: %w", topic, ErrNotConnected)
	}
	if err := wait(ctx, m.client.Publish(topic, qos, retained, payload), "publishing to "+topic); err != nil {
		return err
	}
	m.logger.Debug("Published message", "topic", topic, "size", len(payload))
	return nil
}

// IsConnected implements Broker. paho's own IsConnected is also true while
// it retries, so the open-connection check is used.
func (m *mqttBroker) IsConnected() bool {
	return m.client.IsConnectionOpen()
}

func wait(ctx context.Context, token pahomqtt.Token, op string) error {
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	}
}
