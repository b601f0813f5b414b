package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/gwerr"
)

// Config is the gateway's on-disk configuration: the engine's device
// identity and loop period, which transport backs the link layer, the
// cloud bootstrap/MQTT settings, OTA bounds and the status server.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Transport TransportConfig `yaml:"transport"`
	Cloud     CloudConfig     `yaml:"cloud"`
	OTA       OTAConfig       `yaml:"ota"`
	Logging   LoggingConfig   `yaml:"logging"`
	Status    StatusConfig    `yaml:"status"`
}

type DeviceConfig struct {
	ID         string        `yaml:"id"`
	Profile    string        `yaml:"profile"`
	LoopPeriod time.Duration `yaml:"loop_period"`
}

// TransportConfig selects one of "spi", "uart" or "internal" and carries
// the settings for whichever kind is selected.
type TransportConfig struct {
	Kind string     `yaml:"kind"`
	SPI  SPIConfig  `yaml:"spi"`
	UART UARTConfig `yaml:"uart"`
}

type SPIConfig struct {
	MTU         int    `yaml:"mtu"`
	Bus         string `yaml:"bus"`
	FrequencyHz uint32 `yaml:"frequency_hz"`
	ChipSelect  int    `yaml:"chip_select"`
}

type UARTConfig struct {
	MTU      int    `yaml:"mtu"`
	Device   string `yaml:"device"`
	BaudRate int    `yaml:"baud_rate"`
}

type CloudConfig struct {
	DeviceID         string        `yaml:"device_id"`
	HardwareID       string        `yaml:"hardware_id"`
	IdentityKey      string        `yaml:"identity_key"`
	ManufacturingKey string        `yaml:"manufacturing_key"`
	BootstrapURL     string        `yaml:"bootstrap_url"`
	SecretURL        string        `yaml:"secret_url"`
	APIBaseURL       string        `yaml:"api_base_url"`

	BrokerURL        string        `yaml:"broker_url"`
	MQTTUsername     string        `yaml:"mqtt_username"`
	DeviceSecret     string        `yaml:"device_secret"`
	TopicPrefix      string        `yaml:"topic_prefix"`
	MQTTClientID     string        `yaml:"mqtt_client_id"`
	MQTTKeepaliveSec uint16        `yaml:"mqtt_keepalive_sec"`

	BootstrapTimeout   time.Duration `yaml:"bootstrap_timeout"`
	MQTTConnectTimeout time.Duration `yaml:"mqtt_connect_timeout"`

	PollMinInterval time.Duration `yaml:"poll_min_interval"`
}

type OTAConfig struct {
	ChunkSize uint32 `yaml:"chunk_size"`
	TimeoutMS uint32 `yaml:"timeout_ms"`
}

type LoggingConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

type StatusConfig struct {
	Port int `yaml:"port"`
}

// Load reads and parses the YAML config at path, overlaying it onto a set
// of production defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, gwerr.Wrap("config.Load", gwerr.IO, err)
	}

	cfg := &Config{
		Device: DeviceConfig{
			Profile:    "iiot_gateway",
			LoopPeriod: 100 * time.Millisecond,
		},
		Transport: TransportConfig{
			Kind: "internal",
			SPI:  SPIConfig{MTU: 512},
			UART: UARTConfig{MTU: 512, BaudRate: 115200},
		},
		Cloud: CloudConfig{
			BootstrapTimeout:   5 * time.Second,
			MQTTConnectTimeout: 5 * time.Second,
			MQTTKeepaliveSec:   60,
			PollMinInterval:    30 * time.Second,
		},
		OTA: OTAConfig{
			ChunkSize: 4096,
		},
		Logging: LoggingConfig{
			Path:  "/data/logs/gateway.log",
			Level: "info",
		},
		Status: StatusConfig{
			Port: 8080,
		},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, gwerr.Wrap("config.Load", gwerr.BadMessage, err)
	}

	return cfg, nil
}
