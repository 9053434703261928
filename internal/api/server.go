// Package api provides the local HTTP API: status snapshot, runtime settings
// and a WebSocket stream of status reports.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"phone2pc/internal/controller"
	"phone2pc/internal/logger"
	"phone2pc/internal/protocol"
	"phone2pc/internal/status"
)

// ServiceName identifies a phone2pc receiver in /health responses.
const ServiceName = "phone2pc"

// Controller is the part of the controller the API needs.
type Controller interface {
	Status() controller.Snapshot
	SetSensitivity(v float64) float64
	SetSmoothing(v float64) float64
	LocalAddr() net.Addr
}

// Server provides the HTTP API for a running receiver
type Server struct {
	ctrl  Controller
	token string
	log   logger.Logger
	wsMgr *WSManager
}

// NewServer creates a new API server. An empty token disables auth.
func NewServer(ctrl Controller, token string, log logger.Logger) *Server {
	if log == nil {
		log = logger.Noop()
	}
	s := &Server{
		ctrl:  ctrl,
		token: token,
		log:   log,
	}
	s.wsMgr = newWSManager(s)
	return s
}

// Handler returns the routed handler with auth and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/settings", s.handleSettings)
	mux.HandleFunc("/ws", s.wsMgr.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return s.authMiddleware(s.recoverMiddleware(mux))
}

// Start serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp4", addr)
	if err != nil {
		s.log.Error("failed to listen on %s: %v", addr, err)
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.wsMgr.start()
	defer s.wsMgr.stop()

	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening on http://%s", ln.Addr())
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server stopped: %v", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("shutdown: %v", err)
		return server.Close()
	}
	return nil
}

// BroadcastReport pushes a status report to every WebSocket client.
func (s *Server) BroadcastReport(r status.Report) {
	s.wsMgr.broadcast(protocol.Message{Type: protocol.TypeStatus, Payload: r})
}

// recoverMiddleware prevents panics from crashing the whole server
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error("panic serving %s: %v", r.URL.Path, err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware checks API token if configured
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Debug("%s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

		// Skip auth for health check
		if r.URL.Path == "/health" || s.token == "" {
			next.ServeHTTP(w, r)
			return
		}

		if r.Header.Get("Authorization") != "Bearer "+s.token {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.ctrl.Status())
}

// settingsRequest is the body of POST /api/settings. Absent fields are left
// unchanged.
type settingsRequest struct {
	Sensitivity *float64 `json:"sensitivity"`
	Smoothing   *float64 `json:"smoothing"`
}

// handleSettings handles POST /api/settings
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req settingsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		http.Error(w, "Invalid settings", http.StatusBadRequest)
		return
	}
	if req.Sensitivity == nil && req.Smoothing == nil {
		http.Error(w, "No settings given", http.StatusBadRequest)
		return
	}

	s.log.Info("settings update from %s", r.RemoteAddr)
	s.applySettings(req.Sensitivity, req.Smoothing)
	writeJSON(w, s.ctrl.Status())
}

// applySettings updates the controller and tells WebSocket clients.
func (s *Server) applySettings(sensitivity, smoothing *float64) {
	if sensitivity != nil {
		s.ctrl.SetSensitivity(*sensitivity)
	}
	if smoothing != nil {
		s.ctrl.SetSmoothing(*smoothing)
	}
	snap := s.ctrl.Status()
	s.wsMgr.broadcast(protocol.Message{
		Type: protocol.TypeSettings,
		Payload: protocol.SettingsPayload{
			Sensitivity:     snap.Sensitivity,
			SmoothingFactor: snap.SmoothingFactor,
		},
	})
}

// handleHealth handles GET /health (for monitoring and LAN discovery)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	udpPort := 0
	if addr, ok := s.ctrl.LocalAddr().(*net.UDPAddr); ok {
		udpPort = addr.Port
	}
	writeJSON(w, map[string]interface{}{
		"status":   "ok",
		"service":  ServiceName,
		"udp_port": udpPort,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
