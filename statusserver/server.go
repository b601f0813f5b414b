// Package statusserver exposes the gateway engine's state over HTTP: a
// small JSON status API plus a server-sent-events stream of engine
// lifecycle transitions, mirroring the teacher's gorilla/mux status
// surface and SSE console stream.
package statusserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/engine"
)

// Server is the gateway's HTTP status surface.
type Server struct {
	engine *engine.Engine
	hub    *Hub
	router *mux.Router
	srv    *http.Server
}

// New builds a Server bound to eng, routing /api/engine, /api/cloud,
// /api/ota, /api/stats and /api/stream.
func New(eng *engine.Engine) *Server {
	s := &Server{
		engine: eng,
		hub:    NewHub(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/engine", s.handleEngine).Methods(http.MethodGet)
	r.HandleFunc("/api/cloud", s.handleCloud).Methods(http.MethodGet)
	r.HandleFunc("/api/ota", s.handleOTA).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/api/stream", s.handleStream).Methods(http.MethodGet)
	s.router = r

	return s
}

// PublishEvent pushes a status event line to every connected /api/stream
// client — called from main on cloud status changes, engine start and
// step faults.
func (s *Server) PublishEvent(event []byte) {
	s.hub.Publish(event)
}

// ListenAndServe starts the HTTP server on addr and blocks until it exits
// or the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 0, // SSE streams hold the connection open
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("status server listening")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
