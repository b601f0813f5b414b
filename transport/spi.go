package transport

import (
	"time"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/gwerr"
)

// defaultSPIFrequencyHz is applied when a config leaves FrequencyHz unset.
const defaultSPIFrequencyHz = 1_000_000

// SPIConfig configures the SPI transport variant: bus name, clock
// frequency, chip-select (slave) index and MTU.
type SPIConfig struct {
	MTU         int
	Bus         string
	FrequencyHz uint32
	ChipSelect  int
}

// SPITransport talks to a board over a SPIPort.
type SPITransport struct {
	cfg    SPIConfig
	port   SPIPort
	isOpen bool
}

// NewSPITransport builds a SPI transport over port, applying the default
// MTU and clock frequency when left unset.
func NewSPITransport(cfg SPIConfig, port SPIPort) *SPITransport {
	if cfg.MTU == 0 {
		cfg.MTU = DefaultMTU
	}
	if cfg.FrequencyHz == 0 {
		cfg.FrequencyHz = defaultSPIFrequencyHz
	}
	return &SPITransport{cfg: cfg, port: port}
}

func (t *SPITransport) Kind() Kind { return KindSPI }

func (t *SPITransport) Open() error {
	if t.isOpen {
		return nil
	}
	if err := t.port.Open(t.cfg); err != nil {
		return gwerr.Wrap("spi.Open", gwerr.IO, err)
	}
	t.isOpen = true
	return nil
}

func (t *SPITransport) Close() error {
	if !t.isOpen {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return gwerr.Wrap("spi.Close", gwerr.IO, err)
	}
	t.isOpen = false
	return nil
}

func (t *SPITransport) Tx(data []byte, timeout time.Duration) error {
	if len(data) == 0 {
		return gwerr.New("spi.Tx", gwerr.InvalidArgument)
	}
	if !t.isOpen {
		return gwerr.New("spi.Tx", gwerr.NotConnected)
	}
	if len(data) > t.cfg.MTU {
		return gwerr.New("spi.Tx", gwerr.MessageTooLong)
	}
	return t.port.Tx(data, timeout)
}

func (t *SPITransport) Rx(buf []byte, timeout time.Duration) (int, error) {
	if !t.isOpen {
		return 0, gwerr.New("spi.Rx", gwerr.NotConnected)
	}
	if len(buf) < t.cfg.MTU {
		return 0, gwerr.New("spi.Rx", gwerr.BufferTooSmall)
	}
	return t.port.Rx(buf, timeout)
}

var _ Transport = (*SPITransport)(nil)
