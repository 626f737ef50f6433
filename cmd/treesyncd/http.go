package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/synctree/synctree/internal/changes"
	"github.com/synctree/synctree/internal/processor"
)

// httpServer is a thin JSON-over-HTTP mirror of the engine's operation
// surface: one handler per operation, slog for request logging, a
// /healthz probe, no framework.
type httpServer struct {
	engine *Engine
	log    *slog.Logger
}

func newHTTPServer(e *Engine, logger *slog.Logger) *httpServer {
	return &httpServer{engine: e, log: logger}
}

func (s *httpServer) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/subscribe", s.handleSubscribe)
	mux.HandleFunc("/unsubscribe", s.handleUnsubscribe)
	mux.HandleFunc("/read", s.handleRead)
	mux.HandleFunc("/read_all", s.handleReadAll)
	mux.HandleFunc("/write", s.handleWrite)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/details", s.handleDetails)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

// RunHTTP serves the plain HTTP transport, blocking until the listener
// fails.
func RunHTTP(host string, port int, e *Engine, logger *slog.Logger) {
	s := newHTTPServer(e, logger)
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	logger.Info("starting HTTP transport", "addr", addr)
	if err := http.ListenAndServe(addr, s.mux()); err != nil {
		logger.Error("HTTP transport failed", "error", err)
	}
}

type subscribeRequest struct {
	ClientID string `json:"clientId"`
	PlaceID  *int64 `json:"placeId,omitempty"`
	GameID   *int64 `json:"gameId,omitempty"`
}

func (s *httpServer) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.ClientID == "" {
		s.badRequest(w, "clientId is required")
		return
	}
	s.engine.Subscribe(req.ClientID, req.PlaceID, req.GameID)
	s.writeJSON(w, http.StatusOK, map[string]bool{"subscribed": true})
}

type clientIDRequest struct {
	ClientID string `json:"clientId"`
}

func (s *httpServer) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var req clientIDRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.engine.Unsubscribe(req.ClientID)
	s.writeJSON(w, http.StatusOK, map[string]bool{"unsubscribed": true})
}

func (s *httpServer) handleRead(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		s.badRequest(w, "clientId is required")
		return
	}
	out, err := s.engine.Read(r.Context(), clientID)
	if err != nil {
		s.writeJSON(w, http.StatusOK, changes.Empty())
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *httpServer) handleReadAll(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.ReadAll())
}

func (s *httpServer) handleWrite(w http.ResponseWriter, r *http.Request) {
	var incoming changes.Changes
	if !s.decode(w, r, &incoming) {
		return
	}

	committed, err := s.engine.Write(incoming)
	if err != nil {
		var confirm *processor.ErrConfirmationRequired
		if errors.As(err, &confirm) {
			s.writeJSON(w, http.StatusConflict, map[string]any{
				"error":   "confirmation_required",
				"size":    confirm.Size,
				"changes": confirm.Pending,
			})
			return
		}
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, committed)
}

func (s *httpServer) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *httpServer) handleDetails(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Details())
}

func (s *httpServer) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		s.badRequest(w, "request body is required")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.badRequest(w, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}

func (s *httpServer) badRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func (s *httpServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response", "error", err)
	}
}
