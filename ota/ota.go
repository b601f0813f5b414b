// Package ota implements the gateway's OTA receiver: a small state machine
// that tracks a firmware image delivered as OTA_BEGIN/OTA_CHUNK/OTA_END
// link frames, counting the bytes received; the image bytes themselves are
// not stored.
package ota

import (
	"sync"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/gwerr"
)

// State is one of the four OTA receiver states.
type State int

const (
	StateIdle State = iota
	StateReceiving
	StateVerifying
	StateReadyToApply
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReceiving:
		return "receiving"
	case StateVerifying:
		return "verifying"
	case StateReadyToApply:
		return "ready_to_apply"
	default:
		return "unknown"
	}
}

// Config bounds a single OTA transfer.
type Config struct {
	// ChunkSize caps each individual chunk's length; zero disables the check.
	ChunkSize uint32
	// TimeoutMS is reserved for a future inactivity fault; Pump is
	// currently a no-op, matching the original firmware's stub.
	TimeoutMS uint32
}

// Receiver tracks one in-flight OTA transfer.
type Receiver struct {
	mu            sync.Mutex
	cfg           Config
	state         State
	bytesReceived uint32
}

// New builds a Receiver in the Idle state.
func New(cfg Config) *Receiver {
	return &Receiver{cfg: cfg, state: StateIdle}
}

// State returns the receiver's current state.
func (r *Receiver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// BytesReceived returns the number of payload bytes accumulated since Begin.
func (r *Receiver) BytesReceived() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bytesReceived
}

// Begin starts a new transfer. Returns AlreadyExists unless the receiver is
// Idle: a transfer in progress, or a finished one not yet Reset.
func (r *Receiver) Begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateIdle {
		return gwerr.New("ota.Begin", gwerr.AlreadyExists)
	}

	r.state = StateReceiving
	r.bytesReceived = 0
	return nil
}

// PushChunk adds len(chunk) to the in-flight transfer's byte count; the
// chunk's contents are not kept. Returns InvalidArgument for an empty
// chunk, NotPermitted
// outside the Receiving state, and MessageTooLong if ChunkSize is set and
// exceeded.
func (r *Receiver) PushChunk(chunk []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(chunk) == 0 {
		return gwerr.New("ota.PushChunk", gwerr.InvalidArgument)
	}
	if r.state != StateReceiving {
		return gwerr.New("ota.PushChunk", gwerr.NotPermitted)
	}
	if r.cfg.ChunkSize > 0 && uint32(len(chunk)) > r.cfg.ChunkSize {
		return gwerr.New("ota.PushChunk", gwerr.MessageTooLong)
	}

	r.bytesReceived += uint32(len(chunk))
	return nil
}

// Finish completes the transfer, passing transiently through Verifying and
// landing in ReadyToApply — Verifying is never independently observable,
// matching the original firmware's stub which sets both states in the same
// call.
func (r *Receiver) Finish() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateReceiving {
		return gwerr.New("ota.Finish", gwerr.NotPermitted)
	}

	r.state = StateVerifying
	r.state = StateReadyToApply
	return nil
}

// Pump is the periodic hook point for the receiver; it is currently a
// no-op, matching the original firmware's stub implementation.
func (r *Receiver) Pump() error {
	return nil
}

// Reset returns the receiver to Idle, e.g. after the applied image has
// been consumed by the caller.
func (r *Receiver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateIdle
	r.bytesReceived = 0
}
