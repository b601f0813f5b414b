package cloud

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/gwerr"
)

// doBootstrap posts the signed identity proof to the bootstrap endpoint and
// records the resulting claim status, resolved identifiers and suggested
// poll interval.
func (c *Client) doBootstrap(ctx context.Context) error {
	urlStr, err := buildAPIURL(c.cfg.BootstrapURL, c.cfg.APIBaseURL, "/api/v1/devices/bootstrap")
	if err != nil {
		return err
	}

	u, err := ParseURL(urlStr, SchemeHTTPS, false)
	if err != nil {
		return err
	}

	payload, err := buildAuthPayload(c.cfg)
	if err != nil {
		return err
	}

	result, err := postJSON(ctx, u, payload, c.cfg.BootstrapTimeout)
	if err != nil {
		log.WithError(err).Warn("cloud bootstrap request failed")
		return err
	}
	if result.StatusCode != 200 {
		return gwerr.Wrap("cloud.doBootstrap", statusKind(result.StatusCode),
			fmt.Errorf("unexpected status %d", result.StatusCode))
	}

	statusStr, err := jsonGetString(result.Body, "status")
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.status = statusFromString(statusStr)
	if id, err := jsonGetString(result.Body, "device_id"); err == nil {
		c.resolvedDeviceID = id
	}
	if hw, err := jsonGetString(result.Body, "hardware_id"); err == nil {
		c.resolvedHWID = hw
	}
	if poll, err := jsonGetUint(result.Body, "poll_interval"); err == nil {
		c.pollIntervalS = poll
	}
	status, pollIntervalS := c.status, c.pollIntervalS
	c.mu.Unlock()

	log.WithFields(log.Fields{
		"status":        status,
		"poll_interval": pollIntervalS,
	}).Info("cloud bootstrap complete")

	return nil
}

// doSecret exchanges the bootstrap identity for MQTT credentials. Only
// called when credentials weren't pre-provisioned.
func (c *Client) doSecret(ctx context.Context) error {
	urlStr, err := buildAPIURL(c.cfg.SecretURL, c.cfg.APIBaseURL, "/api/v1/devices/secret")
	if err != nil && c.cfg.SecretURL == "" && c.cfg.APIBaseURL == "" && c.cfg.BootstrapURL != "" {
		urlStr, err = deriveSecretFromBootstrap(c.cfg.BootstrapURL)
	}
	if err != nil {
		return err
	}

	u, err := ParseURL(urlStr, SchemeHTTPS, false)
	if err != nil {
		return err
	}

	payload, err := buildAuthPayload(c.cfg)
	if err != nil {
		return err
	}

	result, err := postJSON(ctx, u, payload, c.cfg.BootstrapTimeout)
	if err != nil {
		log.WithError(err).Warn("cloud secret exchange failed")
		return err
	}
	if result.StatusCode != 200 {
		return gwerr.Wrap("cloud.doSecret", statusKind(result.StatusCode),
			fmt.Errorf("unexpected status %d", result.StatusCode))
	}

	secret, err := jsonGetString(result.Body, "device_secret")
	if err != nil {
		return err
	}
	username, err := jsonGetString(result.Body, "mqtt_username")
	if err != nil {
		return err
	}
	broker, err := jsonGetString(result.Body, "broker")
	if err != nil {
		return err
	}
	topic, err := jsonGetString(result.Body, "topic_prefix")
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.resolvedSecret = secret
	c.resolvedUsername = username
	c.resolvedBroker = broker
	c.resolvedTopic = topic
	c.credentialsReady = true
	c.mu.Unlock()

	log.Info("cloud secret exchange complete")
	return nil
}

// configureAndConnectMQTT builds the paho client for the resolved broker
// and blocks (bounded by cfg.MQTTConnectTimeout) until CONNACK or failure.
func (c *Client) configureAndConnectMQTT(ctx context.Context) error {
	c.mu.Lock()
	resolvedBroker := c.resolvedBroker
	resolvedDeviceID := c.resolvedDeviceID
	resolvedUsername := c.resolvedUsername
	resolvedSecret := c.resolvedSecret
	c.mu.Unlock()

	if resolvedBroker == "" {
		return gwerr.New("cloud.configureAndConnectMQTT", gwerr.InvalidArgument)
	}

	brokerURL, err := ParseURL(resolvedBroker, SchemeWSS, true)
	if err != nil {
		return err
	}

	clientID := c.cfg.MQTTClientID
	if clientID == "" {
		if resolvedDeviceID != "" {
			clientID = resolvedDeviceID
		} else {
			clientID = c.cfg.DeviceID
		}
	}
	if clientID == "" {
		return gwerr.New("cloud.configureAndConnectMQTT", gwerr.InvalidArgument)
	}

	keepalive := c.cfg.MQTTKeepaliveSec
	if keepalive == 0 {
		keepalive = defaultMQTTKeepaliveSec
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerSchemeAddr(brokerURL))
	opts.SetClientID(clientID)
	opts.SetUsername(resolvedUsername)
	opts.SetPassword(resolvedSecret)
	opts.SetKeepAlive(time.Duration(keepalive) * time.Second)
	opts.SetConnectTimeout(c.cfg.MQTTConnectTimeout)
	opts.SetAutoReconnect(false)
	opts.SetCleanSession(true)

	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info("mqtt connected")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		log.WithError(err).Warn("mqtt connection lost")
	})

	client := mqtt.NewClient(opts)

	// Wait for CONNACK in slices of at most 250 ms so a cancelled ctx is
	// noticed without sitting out the whole connect timeout.
	const connackWaitSlice = 250 * time.Millisecond
	deadline := time.Now().Add(c.cfg.MQTTConnectTimeout)
	token := client.Connect()
	for !token.WaitTimeout(connackWaitSlice) {
		if ctx.Err() != nil || !time.Now().Before(deadline) {
			return gwerr.New("cloud.configureAndConnectMQTT", gwerr.TimedOut)
		}
	}
	if err := token.Error(); err != nil {
		return gwerr.Wrap("cloud.configureAndConnectMQTT", gwerr.ConnectionRefused, err)
	}

	c.mu.Lock()
	c.mqttClient = client
	c.mu.Unlock()
	return nil
}

// statusKind classifies a non-200 bootstrap/secret response: an
// authentication/authorization refusal is ConnectionRefused, anything else
// (5xx, unexpected 4xx) is Retry so the Poller keeps trying.
func statusKind(code int) gwerr.Kind {
	if code == 401 || code == 403 {
		return gwerr.ConnectionRefused
	}
	return gwerr.Retry
}

func brokerSchemeAddr(u URL) string {
	scheme := "tcp"
	switch u.Scheme {
	case SchemeWSS:
		scheme = "wss"
	case SchemeWS:
		scheme = "ws"
	case SchemeHTTPS:
		scheme = "ssl"
	case SchemeHTTP:
		scheme = "tcp"
	}
	return fmt.Sprintf("%s://%s:%d%s", scheme, u.Host, u.Port, pathOrEmpty(u, scheme))
}

func pathOrEmpty(u URL, scheme string) string {
	if scheme == "ws" || scheme == "wss" {
		return u.Path
	}
	return ""
}
