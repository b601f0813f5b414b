// Package cloud implements the gateway's cloud bootstrap and MQTT
// lifecycle: identity-proof bootstrap, credential exchange, MQTT
// configure/connect/publish/pump/disconnect.
package cloud

import (
	"context"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/gwerr"
)

// Status is the cloud-side claim state returned by the bootstrap endpoint.
type Status int

const (
	StatusUnknown Status = iota
	StatusNotProvisioned
	StatusUnclaimed
	StatusClaimed
	StatusActive
	StatusSuspended
	StatusRevoked
)

func statusFromString(s string) Status {
	switch s {
	case "not_provisioned":
		return StatusNotProvisioned
	case "unclaimed":
		return StatusUnclaimed
	case "claimed":
		return StatusClaimed
	case "active":
		return StatusActive
	case "suspended":
		return StatusSuspended
	case "revoked":
		return StatusRevoked
	default:
		return StatusUnknown
	}
}

func (s Status) String() string {
	switch s {
	case StatusNotProvisioned:
		return "not_provisioned"
	case StatusUnclaimed:
		return "unclaimed"
	case StatusClaimed:
		return "claimed"
	case StatusActive:
		return "active"
	case StatusSuspended:
		return "suspended"
	case StatusRevoked:
		return "revoked"
	default:
		return "unknown"
	}
}

const (
	defaultBootstrapTimeout    = 5 * time.Second
	defaultMQTTConnectTimeout  = 5 * time.Second
	defaultMQTTKeepaliveSec    = 60
	telemetryTopicSlot         = 0
)

// Config is the static configuration a Client is built from.
type Config struct {
	DeviceID         string
	HardwareID       string
	IdentityKey      string
	ManufacturingKey string

	BootstrapURL string
	SecretURL    string
	APIBaseURL   string

	// Pre-provisioned credentials — when all three are set, Connect skips
	// the secret-exchange phase entirely.
	BrokerURL       string
	MQTTUsername    string
	DeviceSecret    string
	TopicPrefix     string
	MQTTClientID    string
	MQTTKeepaliveSec uint16

	BootstrapTimeout   time.Duration
	MQTTConnectTimeout time.Duration
}

// Client is the gateway's single cloud session. Only one Client may be
// connected at a time per process — Connect on a second instance while
// another is connected returns AlreadyExists, mirroring the original
// firmware's single static MQTT runtime block.
type Client struct {
	// connectMu serializes Connect calls; mu guards the fields below and
	// is never held across a blocking HTTP/MQTT call, so Status/Connected/
	// PollIntervalS stay responsive while a Connect is in flight.
	connectMu sync.Mutex
	mu        sync.Mutex
	cfg       Config

	status           Status
	resolvedDeviceID string
	resolvedHWID     string
	resolvedBroker   string
	resolvedUsername string
	resolvedSecret   string
	resolvedTopic    string
	pollIntervalS    uint32
	credentialsReady bool
	connected        bool
	initialized      bool

	mqttClient mqtt.Client
}

var (
	runtimeMu     sync.Mutex
	activeClient  *Client
)

// New validates cfg and returns an initialized, not-yet-connected Client.
func New(cfg Config) (*Client, error) {
	if cfg.ManufacturingKey == "" {
		return nil, gwerr.New("cloud.New", gwerr.InvalidArgument)
	}
	if identityKey(cfg) == "" {
		return nil, gwerr.New("cloud.New", gwerr.InvalidArgument)
	}

	if cfg.BootstrapTimeout == 0 {
		cfg.BootstrapTimeout = defaultBootstrapTimeout
	}
	if cfg.MQTTConnectTimeout == 0 {
		cfg.MQTTConnectTimeout = defaultMQTTConnectTimeout
	}

	c := &Client{
		cfg:              cfg,
		resolvedDeviceID: cfg.DeviceID,
		resolvedHWID:     cfg.HardwareID,
		resolvedBroker:   cfg.BrokerURL,
		resolvedUsername: cfg.MQTTUsername,
		resolvedSecret:   cfg.DeviceSecret,
		resolvedTopic:    cfg.TopicPrefix,
		initialized:      true,
	}

	if c.resolvedUsername != "" && c.resolvedSecret != "" && c.resolvedTopic != "" {
		c.credentialsReady = true
	}

	return c, nil
}

// Status returns the client's last-known cloud claim status.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Connected reports whether the MQTT session is currently up.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// PollIntervalS is the server-suggested retry interval from the last
// bootstrap response (0 if never set).
func (c *Client) PollIntervalS() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pollIntervalS
}

// Connect runs the full bootstrap → status gate → secret exchange → MQTT
// connect chain. Returns Retry when the claim status isn't yet
// claimed/active — callers are expected to retry later (see Poller).
func (c *Client) Connect(ctx context.Context) error {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	c.mu.Lock()
	initialized, connected := c.initialized, c.connected
	c.mu.Unlock()

	if !initialized {
		return gwerr.New("cloud.Connect", gwerr.InvalidArgument)
	}
	if connected {
		return nil
	}

	if err := c.doBootstrap(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	status := c.status
	credentialsReady := c.credentialsReady
	c.mu.Unlock()

	if status != StatusClaimed && status != StatusActive {
		return gwerr.New("cloud.Connect", gwerr.Retry)
	}

	if !credentialsReady {
		if err := c.doSecret(ctx); err != nil {
			return err
		}
	}

	runtimeMu.Lock()
	if activeClient != nil && activeClient != c {
		runtimeMu.Unlock()
		return gwerr.New("cloud.Connect", gwerr.AlreadyExists)
	}
	activeClient = c
	runtimeMu.Unlock()

	if err := c.configureAndConnectMQTT(ctx); err != nil {
		runtimeMu.Lock()
		if activeClient == c {
			activeClient = nil
		}
		runtimeMu.Unlock()
		return err
	}

	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	return nil
}

// Disconnect tears down the MQTT session (if any) and resets the
// process-wide runtime slot so a future Connect can run again.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return gwerr.New("cloud.Disconnect", gwerr.InvalidArgument)
	}

	if c.connected && c.mqttClient != nil {
		c.mqttClient.Disconnect(250)
	}

	c.mqttClient = nil
	c.connected = false

	runtimeMu.Lock()
	if activeClient == c {
		activeClient = nil
	}
	runtimeMu.Unlock()

	return nil
}

// PublishTelemetry publishes payload on <topic_prefix>/slot/<telemetryTopicSlot>.
func (c *Client) PublishTelemetry(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return gwerr.New("cloud.PublishTelemetry", gwerr.NotConnected)
	}
	if len(payload) == 0 {
		return gwerr.New("cloud.PublishTelemetry", gwerr.InvalidArgument)
	}
	if c.resolvedTopic == "" {
		return gwerr.New("cloud.PublishTelemetry", gwerr.NoData)
	}

	topic := topicForSlot(c.resolvedTopic, telemetryTopicSlot)
	token := c.mqttClient.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(c.cfg.MQTTConnectTimeout) {
		return gwerr.New("cloud.PublishTelemetry", gwerr.TimedOut)
	}
	if err := token.Error(); err != nil {
		return gwerr.Wrap("cloud.PublishTelemetry", gwerr.IO, err)
	}

	return nil
}

// Pump services the underlying MQTT client's keepalive/event loop. Paho
// runs its own goroutines internally, so Pump here is a lightweight
// liveness check rather than a blocking poll.
func (c *Client) Pump() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return gwerr.New("cloud.Pump", gwerr.NotConnected)
	}
	if c.mqttClient == nil || !c.mqttClient.IsConnectionOpen() {
		c.connected = false
		return gwerr.New("cloud.Pump", gwerr.NotConnected)
	}

	return nil
}

func topicForSlot(prefix string, slot int) string {
	return prefix + "/slot/" + itoa(slot)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
