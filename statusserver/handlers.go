package statusserver

import (
	"encoding/json"
	"net/http"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/link"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type engineStatusResponse struct {
	State   string `json:"state"`
	Profile string `json:"profile"`
}

func (s *Server) handleEngine(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, engineStatusResponse{
		State:   s.engine.State().String(),
		Profile: s.engine.ProfileName(),
	})
}

type cloudStatusResponse struct {
	Status        string `json:"status"`
	Connected     bool   `json:"connected"`
	PollIntervalS uint32 `json:"poll_interval_s"`
}

func (s *Server) handleCloud(w http.ResponseWriter, r *http.Request) {
	c := s.engine.Cloud()
	writeJSON(w, cloudStatusResponse{
		Status:        c.Status().String(),
		Connected:     c.Connected(),
		PollIntervalS: c.PollIntervalS(),
	})
}

type otaStatusResponse struct {
	State         string `json:"state"`
	BytesReceived uint32 `json:"bytes_received"`
}

func (s *Server) handleOTA(w http.ResponseWriter, r *http.Request) {
	o := s.engine.OTA()
	writeJSON(w, otaStatusResponse{
		State:         o.State().String(),
		BytesReceived: o.BytesReceived(),
	})
}

type statsResponse struct {
	TxByCmd   map[string]uint64 `json:"tx_by_cmd"`
	RxByCmd   map[string]uint64 `json:"rx_by_cmd"`
	Faults    uint64            `json:"faults"`
	LastFault string            `json:"last_fault"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Stats().Snapshot()

	resp := statsResponse{
		TxByCmd:   make(map[string]uint64, len(snap.TxByCmd)),
		RxByCmd:   make(map[string]uint64, len(snap.RxByCmd)),
		Faults:    snap.Faults,
		LastFault: snap.LastFault,
	}
	for cmd, n := range snap.TxByCmd {
		resp.TxByCmd[cmdName(cmd)] = n
	}
	for cmd, n := range snap.RxByCmd {
		resp.RxByCmd[cmdName(cmd)] = n
	}

	writeJSON(w, resp)
}

func cmdName(cmd link.Cmd) string {
	switch cmd {
	case link.CmdNOP:
		return "nop"
	case link.CmdHeartbeat:
		return "heartbeat"
	case link.CmdTelemetry:
		return "telemetry"
	case link.CmdControl:
		return "control"
	case link.CmdOTABegin:
		return "ota_begin"
	case link.CmdOTAChunk:
		return "ota_chunk"
	case link.CmdOTAEnd:
		return "ota_end"
	case link.CmdACK:
		return "ack"
	case link.CmdNACK:
		return "nack"
	default:
		return "unknown"
	}
}
