package transport

import (
	"time"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/gwerr"
)

// ExchangeFunc is the loopback hook the Internal transport calls on every
// Tx: given the bytes written, it returns whatever bytes should be staged
// for the next Rx (e.g. a test harness echoing frames back, or feeding in
// a canned response).
type ExchangeFunc func(tx []byte) (rx []byte, err error)

// InternalConfig configures the Internal transport variant.
type InternalConfig struct {
	MTU      int
	Exchange ExchangeFunc
}

// InternalTransport is a pure in-process transport used as a test seam
// (and for the engine's self-contained example wiring) — it never touches
// real hardware.
type InternalTransport struct {
	cfg       InternalConfig
	isOpen    bool
	rxStaging []byte
	rxPending bool
}

// NewInternalTransport builds an Internal transport, applying the default
// MTU when cfg.MTU is zero.
func NewInternalTransport(cfg InternalConfig) *InternalTransport {
	if cfg.MTU == 0 {
		cfg.MTU = DefaultMTU
	}
	return &InternalTransport{cfg: cfg}
}

func (t *InternalTransport) Kind() Kind { return KindInternal }

func (t *InternalTransport) Open() error {
	t.isOpen = true
	t.rxPending = false
	t.rxStaging = nil
	return nil
}

func (t *InternalTransport) Close() error {
	t.isOpen = false
	t.rxPending = false
	t.rxStaging = nil
	return nil
}

func (t *InternalTransport) Tx(data []byte, _ time.Duration) error {
	if len(data) == 0 {
		return gwerr.New("internal.Tx", gwerr.InvalidArgument)
	}
	if !t.isOpen {
		return gwerr.New("internal.Tx", gwerr.NotConnected)
	}
	if len(data) > t.cfg.MTU {
		return gwerr.New("internal.Tx", gwerr.MessageTooLong)
	}

	if t.cfg.Exchange == nil {
		return nil
	}

	rx, err := t.cfg.Exchange(data)
	if err != nil {
		return err
	}
	if len(rx) > InternalRxMax {
		return gwerr.New("internal.Tx", gwerr.MessageTooLong)
	}

	t.rxStaging = rx
	t.rxPending = len(rx) > 0
	return nil
}

func (t *InternalTransport) Rx(buf []byte, _ time.Duration) (int, error) {
	if !t.isOpen {
		return 0, gwerr.New("internal.Rx", gwerr.NotConnected)
	}
	if !t.rxPending {
		return 0, gwerr.New("internal.Rx", gwerr.NoData)
	}
	if len(buf) < len(t.rxStaging) {
		return 0, gwerr.New("internal.Rx", gwerr.BufferTooSmall)
	}

	n := copy(buf, t.rxStaging)
	t.rxPending = false
	t.rxStaging = nil
	return n, nil
}

var _ Transport = (*InternalTransport)(nil)
