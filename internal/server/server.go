// internal/server/server.go

// Package server exposes the query engine over HTTP: one ask endpoint plus
// the operational surface (health, cache stats, forced health re-check,
// Prometheus metrics).
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"maintquery/internal/common/config"
	"maintquery/internal/common/logger"
	"maintquery/internal/common/validation"
	"maintquery/internal/engine"
	"maintquery/internal/models"
)

const maxAskBodyBytes = 16 << 10

// askRequestSchema bounds the only untrusted payload the engine accepts.
var askRequestSchema = validation.MustCompile(`{
	"type": "object",
	"properties": {
		"question": {"type": "string", "minLength": 1, "maxLength": 2000},
		"sessionId": {"type": "string", "maxLength": 128}
	},
	"required": ["question"],
	"additionalProperties": false
}`)

// Server wraps the HTTP listener around an Engine.
type Server struct {
	engine *engine.Engine
	logger logger.Logger
	http   *http.Server
}

func New(cfg config.ServerConfig, eng *engine.Engine, log logger.Logger) *Server {
	s := &Server{
		engine: eng,
		logger: log.With(map[string]interface{}{"component": "http-server"}),
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/ask", s.handleAsk).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/cache/stats", s.handleCacheStats).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/health/recheck", s.handleForceHealthCheck).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
	}

	return s
}

// ListenAndServe blocks serving requests until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"address": s.http.Addr,
	})
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type askRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"sessionId,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxAskBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "could not read request body",
		})
		return
	}

	result, err := askRequestSchema.Validate(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "request body must be valid JSON",
		})
		return
	}
	if !result.Valid {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid request",
			"details": result.GetErrorMessages(),
		})
		return
	}

	var req askRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "request body must be valid JSON",
		})
		return
	}

	answer := s.engine.Answer(r.Context(), models.Query{
		Text:       req.Question,
		ReceivedAt: time.Now(),
		SessionID:  req.SessionID,
	})

	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.CacheStats())
}

func (s *Server) handleForceHealthCheck(w http.ResponseWriter, r *http.Request) {
	healthy := s.engine.ForceHealthCheck(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"generativeBackendHealthy": healthy,
		"breakerState":             s.engine.BreakerState(),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":       "healthy",
		"breakerState": s.engine.BreakerState(),
		"time":         time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
