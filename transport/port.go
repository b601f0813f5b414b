package transport

import "time"

// SPIPort is the hardware seam the SPI transport talks through. A real
// board binds its own implementation; NotSupportedSPIPort is the default when
// no board support is linked in, mirroring the original firmware's
// weak-symbol gw_port_spi_* functions.
type SPIPort interface {
	Open(cfg SPIConfig) error
	Close() error
	Tx(data []byte, timeout time.Duration) error
	Rx(buf []byte, timeout time.Duration) (int, error)
}

// UARTPort is the equivalent seam for the UART transport.
type UARTPort interface {
	Open(cfg UARTConfig) error
	Close() error
	Tx(data []byte, timeout time.Duration) error
	Rx(buf []byte, timeout time.Duration) (int, error)
}

// NotSupportedSPIPort and NotSupportedUARTPort are the defaults used when
// no board driver is linked in: Open/Tx return ErrNotSupported and Rx
// returns ErrTimedOut, mirroring the original firmware's weak-symbol
// gw_port_spi_*/gw_port_uart_* fallbacks (-ENOTSUP / -EAGAIN).
type NotSupportedSPIPort struct{}

func (NotSupportedSPIPort) Open(SPIConfig) error                   { return ErrNotSupported }
func (NotSupportedSPIPort) Close() error                           { return nil }
func (NotSupportedSPIPort) Tx([]byte, time.Duration) error         { return ErrNotSupported }
func (NotSupportedSPIPort) Rx([]byte, time.Duration) (int, error)  { return 0, ErrTimedOut }

type NotSupportedUARTPort struct{}

func (NotSupportedUARTPort) Open(UARTConfig) error                  { return ErrNotSupported }
func (NotSupportedUARTPort) Close() error                           { return nil }
func (NotSupportedUARTPort) Tx([]byte, time.Duration) error         { return ErrNotSupported }
func (NotSupportedUARTPort) Rx([]byte, time.Duration) (int, error)  { return 0, ErrTimedOut }

var _ SPIPort = NotSupportedSPIPort{}
var _ UARTPort = NotSupportedUARTPort{}
