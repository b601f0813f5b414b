package link

import (
	"bytes"
	"testing"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/gwerr"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		payload []byte
	}{
		{"empty payload", nil},
		{"small payload", []byte("hello")},
		{"max payload", bytes.Repeat([]byte{0x42}, MaxPayload)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			buf := make([]byte, MaxFrameSize)
			n, err := Encode(0, CmdTelemetry, 7, c.payload, buf)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}

			f, err := Decode(buf[:n])
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if f.Cmd != CmdTelemetry {
				t.Errorf("cmd = %v, want %v", f.Cmd, CmdTelemetry)
			}
			if f.Seq != 7 {
				t.Errorf("seq = %d, want 7", f.Seq)
			}
			if !bytes.Equal(f.Payload, c.payload) {
				t.Errorf("payload = %v, want %v", f.Payload, c.payload)
			}
		})
	}
}

func TestEncodePayloadTooLong(t *testing.T) {
	buf := make([]byte, MaxFrameSize+1)
	_, err := Encode(0, CmdTelemetry, 1, bytes.Repeat([]byte{0}, MaxPayload+1), buf)
	if !gwerr.Is(err, gwerr.MessageTooLong) {
		t.Fatalf("err = %v, want MessageTooLong", err)
	}
}

func TestEncodeBufferTooSmall(t *testing.T) {
	buf := make([]byte, HeaderSize)
	_, err := Encode(0, CmdNOP, 1, nil, buf)
	if !gwerr.Is(err, gwerr.BufferTooSmall) {
		t.Fatalf("err = %v, want BufferTooSmall", err)
	}
}

func TestDecodeBadSOF(t *testing.T) {
	buf := make([]byte, MaxFrameSize)
	n, err := Encode(0, CmdNOP, 1, nil, buf)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	buf[0] = 0x00

	_, err = Decode(buf[:n])
	if !gwerr.Is(err, gwerr.ProtocolError) {
		t.Fatalf("err = %v, want ProtocolError", err)
	}
}

func TestDecodeCorruptedCRC(t *testing.T) {
	buf := make([]byte, MaxFrameSize)
	n, err := Encode(0, CmdNOP, 1, []byte("x"), buf)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	buf[n-1] ^= 0xFF

	_, err = Decode(buf[:n])
	if !gwerr.Is(err, gwerr.BadMessage) {
		t.Fatalf("err = %v, want BadMessage", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	buf := make([]byte, MaxFrameSize)
	n, err := Encode(0, CmdNOP, 1, []byte("hello"), buf)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	_, err = Decode(buf[:n-1])
	if !gwerr.Is(err, gwerr.MessageTooLong) {
		t.Fatalf("err = %v, want MessageTooLong", err)
	}
}

func TestCRC16KnownVector(t *testing.T) {
	// "123456789" -> 0x29B1 is the standard CRC-16/CCITT-FALSE check value.
	got := CRC16CCITTFalse([]byte("123456789"))
	if got != 0x29B1 {
		t.Fatalf("CRC16CCITTFalse(\"123456789\") = 0x%04X, want 0x29B1", got)
	}
}
