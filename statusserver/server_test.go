package statusserver

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/cloud"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/engine"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/ota"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/profile"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/transport"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	eng, err := engine.New(engine.Config{
		DeviceID:   "dev-1",
		LoopPeriod: 10 * time.Millisecond,
		Profile:    profile.IIoTGateway,
		Cloud: cloud.Config{
			ManufacturingKey: "mk",
			DeviceID:         "dev-1",
			BootstrapURL:     "http://127.0.0.1:1/bootstrap",
		},
		OTA: ota.Config{ChunkSize: 1024},
	}, transport.NewInternalTransport(transport.InternalConfig{}))
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return New(eng)
}

func TestHandleEngineReturnsState(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/engine", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp engineStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if resp.State != "ready" || resp.Profile != "iiot_gateway" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestHandleStatsReturnsEmptyCounters(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/stats", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if resp.Faults != 0 || len(resp.TxByCmd) != 0 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestHubPublishAndCatchup(t *testing.T) {
	h := NewHub()
	h.Publish([]byte("engine started"))

	if string(h.Catchup()) != "engine started" {
		t.Fatalf("catchup = %q", h.Catchup())
	}

	ch := h.Subscribe()
	h.Publish([]byte("state changed"))

	select {
	case data := <-ch:
		if string(data) != "state changed" {
			t.Fatalf("got %q", data)
		}
	default:
		t.Fatal("expected published event on subscriber channel")
	}
	h.Unsubscribe(ch)
}
