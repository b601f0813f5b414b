package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/cloud"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/gwerr"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/link"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/ota"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/profile"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/transport"
)

func testConfig() Config {
	return Config{
		DeviceID:   "dev-1",
		LoopPeriod: 10 * time.Millisecond,
		Profile:    profile.IIoTGateway,
		Cloud: cloud.Config{
			ManufacturingKey: "mk",
			DeviceID:         "dev-1",
			BootstrapURL:     "http://127.0.0.1:1/bootstrap",
		},
		OTA: ota.Config{ChunkSize: 1024},
	}
}

func TestNewRejectsEmptyConfig(t *testing.T) {
	if _, err := New(Config{}, transport.NewInternalTransport(transport.InternalConfig{})); err == nil {
		t.Fatal("expected error for empty config")
	}
}

func TestNewRejectsNilTransport(t *testing.T) {
	if _, err := New(testConfig(), nil); err == nil {
		t.Fatal("expected error for nil transport")
	}
}

func TestNewReachesReadyState(t *testing.T) {
	e, err := New(testConfig(), transport.NewInternalTransport(transport.InternalConfig{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if e.State() != StateReady {
		t.Fatalf("state = %v, want Ready", e.State())
	}
	if e.ProfileName() != "iiot_gateway" {
		t.Fatalf("ProfileName = %q", e.ProfileName())
	}
}

func TestStepBeforeStartFails(t *testing.T) {
	e, err := New(testConfig(), transport.NewInternalTransport(transport.InternalConfig{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Step(context.Background()); err == nil {
		t.Fatal("expected error stepping before Start")
	}
}

func TestStartRollsBackTransportOnCloudFailure(t *testing.T) {
	tr := transport.NewInternalTransport(transport.InternalConfig{})
	e, err := New(testConfig(), tr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := e.Start(ctx); err == nil {
		t.Fatal("expected Start to fail: no real bootstrap endpoint reachable")
	}
	if e.State() != StateFault {
		t.Fatalf("state = %v, want Fault", e.State())
	}
	if tr.Kind() != transport.KindInternal {
		t.Fatalf("unexpected transport kind %v", tr.Kind())
	}
	// transport must have been closed again by the rollback
	if _, err := tr.Rx(make([]byte, 8), 0); err == nil {
		t.Fatal("expected Rx on closed transport to fail")
	}
}

func TestSendIncrementsSeqEvenOnTransportFailure(t *testing.T) {
	e, err := New(testConfig(), transport.NewInternalTransport(transport.InternalConfig{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Force the running state directly (white-box) without a real cloud
	// connection, mirroring the engine mid-session.
	e.running = true

	firstSeq := e.txSeq
	_ = e.Send(link.CmdHeartbeat, nil) // transport not open: Tx fails
	if e.txSeq != firstSeq+1 {
		t.Fatalf("txSeq = %d, want %d (increments even on failed tx)", e.txSeq, firstSeq+1)
	}
}

func TestSendLeavesSeqUnchangedOnOversizedPayload(t *testing.T) {
	e, err := New(testConfig(), transport.NewInternalTransport(transport.InternalConfig{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.running = true

	firstSeq := e.txSeq
	oversized := make([]byte, link.MaxPayload+1)
	if err := e.Send(link.CmdTelemetry, oversized); !gwerr.Is(err, gwerr.MessageTooLong) {
		t.Fatalf("expected MessageTooLong, got %v", err)
	}
	if e.txSeq != firstSeq {
		t.Fatalf("txSeq = %d, want unchanged %d", e.txSeq, firstSeq)
	}
}

func TestHandleIncomingFrameRoutesOTA(t *testing.T) {
	e, err := New(testConfig(), transport.NewInternalTransport(transport.InternalConfig{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	beginFrame := make([]byte, link.MaxFrameSize)
	n, err := link.Encode(0, link.CmdOTABegin, 1, nil, beginFrame)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := e.handleIncomingFrame(beginFrame[:n]); err != nil {
		t.Fatalf("handleIncomingFrame(begin): %v", err)
	}
	if e.ota.State() != ota.StateReceiving {
		t.Fatalf("ota state = %v, want Receiving", e.ota.State())
	}

	// A second BEGIN while already receiving must fail.
	if err := e.handleIncomingFrame(beginFrame[:n]); !gwerr.Is(err, gwerr.AlreadyExists) {
		t.Fatalf("expected AlreadyExists on double begin, got %v", err)
	}

	snap := e.stats.Snapshot()
	if snap.RxByCmd[link.CmdOTABegin] != 2 {
		t.Fatalf("rx count = %d, want 2", snap.RxByCmd[link.CmdOTABegin])
	}
}

func TestStopIsIdempotentAndReturnsToReady(t *testing.T) {
	e, err := New(testConfig(), transport.NewInternalTransport(transport.InternalConfig{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.running = true
	e.state = StateRunning

	if err := e.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if e.State() != StateReady {
		t.Fatalf("state = %v, want Ready", e.State())
	}
	if err := e.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}
