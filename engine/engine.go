// Package engine orchestrates the gateway's link transport, cloud client
// and OTA receiver behind a single-threaded Init/Start/Step/Send/Stop loop.
package engine

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/cloud"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/gwerr"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/link"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/ota"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/profile"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/transport"
)

// State is the engine's lifecycle state.
type State int

const (
	StateInit State = iota
	StateReady
	StateRunning
	StateFault
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateFault:
		return "fault"
	default:
		return "unknown"
	}
}

// Config is the static configuration an Engine is built from.
type Config struct {
	DeviceID       string
	LoopPeriod     time.Duration
	Profile        profile.Profile
	Cloud          cloud.Config
	OTA            ota.Config
}

// Engine is the gateway's single-device orchestrator.
type Engine struct {
	config      Config
	transport   transport.Transport
	cloud       *cloud.Client
	ota         *ota.Receiver
	state       State
	running     bool
	initialized bool
	txSeq       uint16
	stats       *Stats
	rxBuf       []byte
	txBuf       []byte
}

// New builds an Engine bound to tr, initializing its cloud client and OTA
// receiver. On any initialization failure it returns a nil Engine and the
// error.
func New(cfg Config, tr transport.Transport) (*Engine, error) {
	if cfg.DeviceID == "" || cfg.LoopPeriod == 0 {
		return nil, gwerr.New("engine.New", gwerr.InvalidArgument)
	}
	if tr == nil {
		return nil, gwerr.New("engine.New", gwerr.InvalidArgument)
	}

	e := &Engine{
		config:    cfg,
		transport: tr,
		state:     StateInit,
		txSeq:     1,
		stats:     newStats(),
		ota:       ota.New(cfg.OTA),
		rxBuf:     make([]byte, link.MaxFrameSize),
		txBuf:     make([]byte, link.MaxFrameSize),
	}

	cl, err := cloud.New(cfg.Cloud)
	if err != nil {
		e.state = StateFault
		return nil, gwerr.Wrap("engine.New", gwerr.InvalidArgument, err)
	}
	e.cloud = cl

	e.state = StateReady
	e.initialized = true
	return e, nil
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State { return e.state }

// Stats returns the engine's frame/fault counters.
func (e *Engine) Stats() *Stats { return e.stats }

// Cloud returns the engine's cloud client, for status reporting and the
// background poller.
func (e *Engine) Cloud() *cloud.Client { return e.cloud }

// OTA returns the engine's OTA receiver, for status reporting.
func (e *Engine) OTA() *ota.Receiver { return e.ota }

// ProfileName returns the configured profile's human-readable name.
func (e *Engine) ProfileName() string { return profile.Name(e.config.Profile) }

// Start opens the transport and connects the cloud client, rolling the
// transport back if the cloud connect fails.
func (e *Engine) Start(ctx context.Context) error {
	if !e.initialized {
		return gwerr.New("engine.Start", gwerr.InvalidArgument)
	}
	if e.running {
		return nil
	}

	if err := e.transport.Open(); err != nil {
		e.state = StateFault
		return gwerr.Wrap("engine.Start", gwerr.IO, err)
	}

	if err := e.cloud.Connect(ctx); err != nil {
		_ = e.transport.Close()
		e.state = StateFault
		return err
	}

	e.running = true
	e.state = StateRunning
	log.WithField("device_id", e.config.DeviceID).Info("engine started")
	return nil
}

// Step runs one iteration of the engine loop: drain one pending rx frame
// (routing OTA commands), pump the cloud client, pump the OTA receiver.
func (e *Engine) Step(ctx context.Context) error {
	if !e.running {
		return gwerr.New("engine.Step", gwerr.InvalidArgument)
	}

	n, err := e.transport.Rx(e.rxBuf, 0)
	if err == nil && n > 0 {
		if ferr := e.handleIncomingFrame(e.rxBuf[:n]); ferr != nil {
			e.state = StateFault
			e.stats.recordFault(ferr.Error())
			return ferr
		}
	}

	if perr := e.cloud.Pump(); perr != nil && !gwerr.Is(perr, gwerr.NotConnected) {
		e.state = StateFault
		e.stats.recordFault(perr.Error())
		return perr
	}

	if oerr := e.ota.Pump(); oerr != nil {
		e.state = StateFault
		e.stats.recordFault(oerr.Error())
		return oerr
	}

	return nil
}

func (e *Engine) handleIncomingFrame(frame []byte) error {
	f, err := link.Decode(frame)
	if err != nil {
		return err
	}

	e.stats.recordRx(f.Cmd)

	switch f.Cmd {
	case link.CmdOTABegin:
		return e.ota.Begin()
	case link.CmdOTAChunk:
		return e.ota.PushChunk(f.Payload)
	case link.CmdOTAEnd:
		return e.ota.Finish()
	default:
		return nil
	}
}

// Send encodes and transmits a frame. The sequence number is incremented
// only once Encode succeeds (an oversized payload never consumes one), but
// still before the wire write — so a failed transport write leaves it
// advanced, carried over deliberately from the original firmware.
func (e *Engine) Send(cmd link.Cmd, payload []byte) error {
	if !e.running {
		return gwerr.New("engine.Send", gwerr.InvalidArgument)
	}

	n, err := link.Encode(0, cmd, e.txSeq, payload, e.txBuf)
	if err != nil {
		return err
	}

	e.txSeq++

	e.stats.recordTx(cmd)
	return e.transport.Tx(e.txBuf[:n], e.config.LoopPeriod)
}

// Stop disconnects the cloud client and closes the transport. It is
// idempotent and always leaves the engine in the Ready state.
func (e *Engine) Stop() error {
	if !e.initialized {
		return gwerr.New("engine.Stop", gwerr.InvalidArgument)
	}

	_ = e.cloud.Disconnect()
	_ = e.transport.Close()

	e.running = false
	e.state = StateReady
	return nil
}
