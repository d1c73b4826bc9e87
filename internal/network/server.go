package network

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
	"github.com/MRamiBalles/PetGrooming/internal/platform/metrics"
)

const shutdownTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Browser clients are served from other origins during development
	},
}

// Server exposes the live session, the replay API and metrics over HTTP.
type Server struct {
	addr    string
	hub     *Hub
	session *Session
	replay  *ReplayHandler
	logger  *logger.Logger
	mux     *http.ServeMux
}

// NewServer wires the routes:
//
//	/ws                    player websocket (?role=spectator for read-only)
//	/api/state             current snapshot
//	/api/replay...         event ledger, see ReplayHandler
//	/metrics               JSON metrics
//	/metrics/prometheus    Prometheus text format
func NewServer(addr string, hub *Hub, session *Session, replay *ReplayHandler, log *logger.Logger) *Server {
	s := &Server{addr: addr, hub: hub, session: session, replay: replay, logger: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("/ws", s.serveWs)
	s.mux.HandleFunc("/api/state", s.handleState)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if replay != nil {
		replay.RegisterRoutes(s.mux)
	}
	s.mux.Handle("/metrics", metrics.Handler())
	s.mux.Handle("/metrics/prometheus", metrics.PrometheusHandler())
	return s
}

// Handler returns the route table, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.mux}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// serveWs handles websocket requests from the peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade websocket connection: %v", err)
		metrics.Get().RecordWSError()
		return
	}
	var sink CommandSink = s.session
	if r.URL.Query().Get("role") == "spectator" || s.session == nil {
		sink = nil
	}
	client := NewClient(s.hub, conn, sink)
	if s.session != nil {
		snap := s.session.Snapshot()
		if payload, err := json.Marshal(ServerMessage{Type: MsgFrame, Tick: snap.Tick, Snapshot: &snap}); err == nil {
			client.send <- payload
		}
	}
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.session == nil {
		http.Error(w, "No live session", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"snapshot":  s.session.Snapshot(),
		"autopilot": s.session.Autopilot(),
		"clients":   s.hub.ClientCount(),
	})
}
