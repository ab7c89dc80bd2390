package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"home_energy/internal/apperr"
	"home_energy/internal/models"
)

const (
	defaultTopicPrefix = "home_energy"
	mqttConnectTimeout = 10 * time.Second
	mqttPublishTimeout = 5 * time.Second
	mqttQoS            = 1
)

// MQTTOptions mirrors config.MQTTConfig so this package stays config-agnostic.
type MQTTOptions struct {
	Broker      string
	TopicPrefix string
	ClientID    string
	Username    string
	Password    string
}

// MQTTPublisher publishes each reading to <prefix>/<device_id>/energy.
type MQTTPublisher struct {
	client      mqtt.Client
	topicPrefix string
}

// NewMQTTPublisher connects to the broker. Broker is host:port or a full URL.
func NewMQTTPublisher(o MQTTOptions) (*MQTTPublisher, error) {
	if o.Broker == "" {
		return nil, apperr.Configuration("MQTT broker address is required")
	}

	broker := o.Broker
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}
	clientID := o.ClientID
	if clientID == "" {
		clientID = "home-energy-" + uuid.NewString()[:8]
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(mqttConnectTimeout)
	if o.Username != "" {
		opts.SetUsername(o.Username)
	}
	if o.Password != "" {
		opts.SetPassword(o.Password)
	}

	client := mqtt.NewClient(opts)
	if err := connect(client, broker, mqttConnectTimeout); err != nil {
		return nil, err
	}
	return newMQTTPublisher(client, o.TopicPrefix), nil
}

// connect waits for the first connection. On failure the client is
// disconnected so connect-retry stops in the background.
func connect(client mqtt.Client, broker string, timeout time.Duration) error {
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		client.Disconnect(0)
		return apperr.Transient("mqtt connect", fmt.Errorf("timed out after %s connecting to %s", timeout, broker))
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return apperr.Transient("mqtt connect", err)
	}
	return nil
}

func newMQTTPublisher(client mqtt.Client, prefix string) *MQTTPublisher {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = defaultTopicPrefix
	}
	return &MQTTPublisher{client: client, topicPrefix: prefix}
}

// Topic is the destination of readings for deviceID.
func (p *MQTTPublisher) Topic(deviceID int) string {
	return fmt.Sprintf("%s/%d/energy", p.topicPrefix, deviceID)
}

type mqttPayload struct {
	DeviceID    int     `json:"device_id"`
	Timestamp   string  `json:"timestamp"`
	EnergyUsage float64 `json:"energy_usage"`
}

func (p *MQTTPublisher) Publish(ctx context.Context, r models.TelemetryReading) error {
	body, err := json.Marshal(mqttPayload{
		DeviceID:    r.DeviceID,
		Timestamp:   r.Timestamp.UTC().Format(time.RFC3339),
		EnergyUsage: r.EnergyUsage,
	})
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	timeout := mqttPublishTimeout
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < timeout {
		timeout = time.Until(dl)
	}

	token := p.client.Publish(p.Topic(r.DeviceID), mqttQoS, false, body)
	if !token.WaitTimeout(timeout) {
		return apperr.Transient("mqtt publish", fmt.Errorf("no ack within %s", timeout))
	}
	if err := token.Error(); err != nil {
		return apperr.Transient("mqtt publish", err)
	}
	return nil
}

// Close disconnects from the MQTT broker
func (p *MQTTPublisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
