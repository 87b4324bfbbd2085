// Package notify forwards dispatch-completed notices to external listeners
// over MQTT. Delivery is fire-and-forget: a lost notice is acceptable, a
// blocked publisher is not.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/urbanpulse/sentinel/core/model"
	"github.com/urbanpulse/sentinel/infra/logger"
)

// Notifier publishes dispatch notices to interested consumers.
type Notifier interface {
	Notify(notice model.DispatchNotice) error
	Close()
}

// Config defines the connection parameters for the MQTT notifier.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "sentinel-" + uuid.NewString()[:8]
	}
	if c.Topic == "" {
		c.Topic = "sentinel/dispatch/completed"
	}
}

// Validate checks mandatory fields when the notifier is enabled.
func (c Config) Validate() error {
	if c.Enabled && c.Broker == "" {
		return fmt.Errorf("notify broker is required when enabled")
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// MQTTNotifier publishes DispatchNotice messages as JSON on one topic.
type MQTTNotifier struct {
	cli   pahoClient
	topic string
	qos   byte
	log   logger.Logger
}

// NewMQTTNotifier connects to the broker and returns a ready notifier.
func NewMQTTNotifier(cfg Config) (*MQTTNotifier, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.New("notify")
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &MQTTNotifier{cli: c, topic: cfg.Topic, qos: cfg.QoS, log: log}, nil
}

// Notify publishes the notice. The token is not awaited beyond the publish
// call itself; no acknowledgement is required from consumers.
func (n *MQTTNotifier) Notify(notice model.DispatchNotice) error {
	payload, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	token := n.cli.Publish(n.topic, n.qos, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("notify: publish: %w", token.Error())
	}
	n.log.Debugf("notice published to %s: %s", n.topic, notice.POID)
	return nil
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() {
	n.cli.Disconnect(250)
}

// NopNotifier discards notices; used when MQTT forwarding is disabled.
type NopNotifier struct{}

func (NopNotifier) Notify(model.DispatchNotice) error { return nil }
func (NopNotifier) Close()                            {}
