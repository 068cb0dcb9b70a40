// Package server exposes a read-only HTTP monitor for a running design
// search: the current design state, a health probe, and metrics.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voltlab/boostgen/internal/design"
	"github.com/voltlab/boostgen/internal/logging"
)

// Logger is the logging surface the server needs.
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// StateSource provides the latest design state snapshot. The optimizer
// implements it; nil state means the run has not initialized yet.
type StateSource interface {
	State() *design.DesignState
}

// Server serves the monitor endpoints.
type Server struct {
	source StateSource
	logger Logger
}

// NewServer creates a monitor over the given state source.
func NewServer(source StateSource, logger Logger) *Server {
	return &Server{source: source, logger: logger}
}

// RegisterRoutes mounts the monitor endpoints on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/design", s.handleDesign)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Handle("/metrics", promhttp.Handler())
}

// handleDesign serves the latest design state. 404 until the optimizer has
// initialized.
func (s *Server) handleDesign(w http.ResponseWriter, r *http.Request) {
	state := s.source.State()
	if state == nil {
		http.Error(w, "design not initialized", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(state); err != nil {
		s.logger.Error("Failed to encode design state", map[string]interface{}{"error": err})
	}
}
