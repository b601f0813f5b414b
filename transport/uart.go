package transport

import (
	"time"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/gwerr"
)

// UARTConfig configures the UART transport variant.
type UARTConfig struct {
	MTU      int
	Device   string
	BaudRate int
}

// UARTTransport talks to a board over a UARTPort.
type UARTTransport struct {
	cfg    UARTConfig
	port   UARTPort
	isOpen bool
}

// NewUARTTransport builds a UART transport over port, applying the default
// MTU when cfg.MTU is zero.
func NewUARTTransport(cfg UARTConfig, port UARTPort) *UARTTransport {
	if cfg.MTU == 0 {
		cfg.MTU = DefaultMTU
	}
	return &UARTTransport{cfg: cfg, port: port}
}

func (t *UARTTransport) Kind() Kind { return KindUART }

func (t *UARTTransport) Open() error {
	if t.isOpen {
		return nil
	}
	if err := t.port.Open(t.cfg); err != nil {
		return gwerr.Wrap("uart.Open", gwerr.IO, err)
	}
	t.isOpen = true
	return nil
}

func (t *UARTTransport) Close() error {
	if !t.isOpen {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return gwerr.Wrap("uart.Close", gwerr.IO, err)
	}
	t.isOpen = false
	return nil
}

func (t *UARTTransport) Tx(data []byte, timeout time.Duration) error {
	if len(data) == 0 {
		return gwerr.New("uart.Tx", gwerr.InvalidArgument)
	}
	if !t.isOpen {
		return gwerr.New("uart.Tx", gwerr.NotConnected)
	}
	if len(data) > t.cfg.MTU {
		return gwerr.New("uart.Tx", gwerr.MessageTooLong)
	}
	return t.port.Tx(data, timeout)
}

func (t *UARTTransport) Rx(buf []byte, timeout time.Duration) (int, error) {
	if !t.isOpen {
		return 0, gwerr.New("uart.Rx", gwerr.NotConnected)
	}
	if len(buf) < t.cfg.MTU {
		return 0, gwerr.New("uart.Rx", gwerr.BufferTooSmall)
	}
	return t.port.Rx(buf, timeout)
}

var _ Transport = (*UARTTransport)(nil)
