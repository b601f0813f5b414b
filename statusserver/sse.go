package statusserver

import (
	"fmt"
	"net/http"
)

// handleStream serves /api/stream: a server-sent-events feed of engine
// status events, replaying the buffered catchup before joining the live
// broadcast.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	fmt.Fprintf(w, "event: connected\ndata: %s\n\n", s.engine.ProfileName())
	flusher.Flush()

	if catchup := s.hub.Catchup(); len(catchup) > 0 {
		fmt.Fprintf(w, "data: %s\n\n", catchup)
		flusher.Flush()
	}

	ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case data, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
