// Package transport implements the gateway's link-layer transport
// abstraction: SPI, UART and an in-process Internal loopback variant share
// a common Transport interface so the engine never depends on a concrete
// bus implementation.
package transport

import (
	"time"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/gwerr"
)

// DefaultMTU is used whenever a variant's config leaves MTU unset.
const DefaultMTU = 512

// InternalRxMax bounds the staging buffer of the Internal variant.
const InternalRxMax = 1024

// Kind identifies which concrete variant backs a Transport.
type Kind int

const (
	KindSPI Kind = iota
	KindUART
	KindInternal
)

// Transport is the narrow vtable every variant implements, mirroring the
// engine's single entry point into the link layer.
type Transport interface {
	Open() error
	Close() error
	Tx(data []byte, timeout time.Duration) error
	Rx(buf []byte, timeout time.Duration) (int, error)
	Kind() Kind
}

// ErrNotSupported / ErrTimedOut are the two outcomes NotSupportedSPIPort and
// NotSupportedUARTPort return, matching the original weak-symbol port defaults (-ENOTSUP for
// anything that mutates state, -EAGAIN/timeout for polling reads).
var (
	ErrNotSupported = gwerr.New("port", gwerr.NotSupported)
	ErrTimedOut     = gwerr.New("port", gwerr.TimedOut)
)
