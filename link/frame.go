// Package link implements the wire framing for the gateway's board-to-engine
// link: an 8-byte header, a payload of up to MaxPayload bytes, and a
// trailing CRC-16/CCITT-FALSE.
package link

import (
	"encoding/binary"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/gwerr"
)

const (
	SOF     byte = 0xA5
	Version byte = 0x01

	HeaderSize   = 8
	CRCSize      = 2
	MaxPayload   = 512
	MaxFrameSize = HeaderSize + MaxPayload + CRCSize
)

// Cmd is the link-layer command carried in a frame.
type Cmd byte

const (
	CmdNOP       Cmd = 0x00
	CmdHeartbeat Cmd = 0x01
	CmdTelemetry Cmd = 0x10
	CmdControl  Cmd = 0x11
	CmdOTABegin Cmd = 0x20
	CmdOTAChunk Cmd = 0x21
	CmdOTAEnd   Cmd = 0x22
	CmdACK      Cmd = 0x7E
	CmdNACK     Cmd = 0x7F
)

// Frame is a decoded view over a received buffer. Payload aliases the
// caller-supplied slice; callers must copy it before reusing the buffer.
type Frame struct {
	Flags      byte
	Cmd        Cmd
	Seq        uint16
	Payload    []byte
	PayloadLen uint16
}

// Encode writes a frame for (flags, cmd, seq, payload) into out and returns
// the number of bytes written. out must have capacity for at least
// HeaderSize+len(payload)+CRCSize bytes.
func Encode(flags byte, cmd Cmd, seq uint16, payload []byte, out []byte) (int, error) {
	if len(payload) > MaxPayload {
		return 0, gwerr.New("link.Encode", gwerr.MessageTooLong)
	}

	frameLen := HeaderSize + len(payload) + CRCSize
	if len(out) < frameLen {
		return 0, gwerr.New("link.Encode", gwerr.BufferTooSmall)
	}

	out[0] = SOF
	out[1] = Version
	out[2] = flags
	out[3] = byte(cmd)
	binary.LittleEndian.PutUint16(out[4:6], seq)
	binary.LittleEndian.PutUint16(out[6:8], uint16(len(payload)))

	if len(payload) > 0 {
		copy(out[HeaderSize:], payload)
	}

	crc := CRC16CCITTFalse(out[1 : HeaderSize+len(payload)])
	binary.LittleEndian.PutUint16(out[HeaderSize+len(payload):], crc)

	return frameLen, nil
}

// Decode parses a frame out of buf. The returned Frame.Payload aliases buf.
func Decode(buf []byte) (Frame, error) {
	var f Frame

	if len(buf) < HeaderSize+CRCSize {
		return f, gwerr.New("link.Decode", gwerr.MessageTooLong)
	}

	if buf[0] != SOF || buf[1] != Version {
		return f, gwerr.New("link.Decode", gwerr.ProtocolError)
	}

	payloadLen := binary.LittleEndian.Uint16(buf[6:8])
	if payloadLen > MaxPayload {
		return f, gwerr.New("link.Decode", gwerr.MessageTooLong)
	}

	expectedLen := HeaderSize + int(payloadLen) + CRCSize
	if len(buf) != expectedLen {
		return f, gwerr.New("link.Decode", gwerr.MessageTooLong)
	}

	rxCRC := binary.LittleEndian.Uint16(buf[HeaderSize+int(payloadLen):])
	calcCRC := CRC16CCITTFalse(buf[1 : HeaderSize+int(payloadLen)])
	if rxCRC != calcCRC {
		return f, gwerr.New("link.Decode", gwerr.BadMessage)
	}

	f.Flags = buf[2]
	f.Cmd = Cmd(buf[3])
	f.Seq = binary.LittleEndian.Uint16(buf[4:6])
	f.PayloadLen = payloadLen
	f.Payload = buf[HeaderSize : HeaderSize+int(payloadLen)]

	return f, nil
}
