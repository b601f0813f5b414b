package transport

import (
	"bytes"
	"testing"
	"time"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/gwerr"
)

func TestInternalTransportOpenCloseGuards(t *testing.T) {
	tr := NewInternalTransport(InternalConfig{})

	if err := tr.Tx([]byte("hi"), time.Second); !gwerr.Is(err, gwerr.NotConnected) {
		t.Fatalf("Tx before Open: err = %v, want NotConnected", err)
	}

	if err := tr.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tr.Close()

	buf := make([]byte, 16)
	if _, err := tr.Rx(buf, 0); !gwerr.Is(err, gwerr.NoData) {
		t.Fatalf("Rx with nothing staged: err = %v, want NoData", err)
	}
}

func TestInternalTransportExchangeLoopback(t *testing.T) {
	tr := NewInternalTransport(InternalConfig{
		Exchange: func(tx []byte) ([]byte, error) {
			echo := make([]byte, len(tx))
			copy(echo, tx)
			return echo, nil
		},
	})

	if err := tr.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tr.Close()

	if err := tr.Tx([]byte("ping"), 0); err != nil {
		t.Fatalf("Tx: %v", err)
	}

	buf := make([]byte, 16)
	n, err := tr.Rx(buf, 0)
	if err != nil {
		t.Fatalf("Rx: %v", err)
	}
	if !bytes.Equal(buf[:n], []byte("ping")) {
		t.Fatalf("Rx = %q, want %q", buf[:n], "ping")
	}

	if _, err := tr.Rx(buf, 0); !gwerr.Is(err, gwerr.NoData) {
		t.Fatalf("second Rx: err = %v, want NoData", err)
	}
}

func TestInternalTransportMTUExceeded(t *testing.T) {
	tr := NewInternalTransport(InternalConfig{MTU: 4})
	if err := tr.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tr.Close()

	if err := tr.Tx([]byte("toolong"), 0); !gwerr.Is(err, gwerr.MessageTooLong) {
		t.Fatalf("Tx over MTU: err = %v, want MessageTooLong", err)
	}
}

func TestSPITransportDefaultsToNotSupported(t *testing.T) {
	tr := NewSPITransport(SPIConfig{}, NotSupportedSPIPort{})

	if err := tr.Open(); !gwerr.Is(err, gwerr.IO) {
		t.Fatalf("Open: err = %v, want IO-wrapped NotSupported", err)
	}
}

func TestSPITransportDefaultsFrequency(t *testing.T) {
	tr := NewSPITransport(SPIConfig{Bus: "spi0"}, NotSupportedSPIPort{})
	if tr.cfg.FrequencyHz != defaultSPIFrequencyHz {
		t.Fatalf("FrequencyHz = %d, want default %d", tr.cfg.FrequencyHz, defaultSPIFrequencyHz)
	}

	tr2 := NewSPITransport(SPIConfig{Bus: "spi0", FrequencyHz: 4_000_000}, NotSupportedSPIPort{})
	if tr2.cfg.FrequencyHz != 4_000_000 {
		t.Fatalf("FrequencyHz = %d, want explicit 4_000_000", tr2.cfg.FrequencyHz)
	}
}

// openableUARTPort opens successfully and otherwise behaves like
// NotSupportedUARTPort, so the transport's own Rx guards can be reached.
type openableUARTPort struct{ NotSupportedUARTPort }

func (openableUARTPort) Open(UARTConfig) error { return nil }

func TestUARTTransportRxBufferTooSmall(t *testing.T) {
	tr := NewUARTTransport(UARTConfig{MTU: 32}, openableUARTPort{})
	if err := tr.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}

	buf := make([]byte, 4)
	if _, err := tr.Rx(buf, 0); !gwerr.Is(err, gwerr.BufferTooSmall) {
		t.Fatalf("Rx: err = %v, want BufferTooSmall", err)
	}
}
