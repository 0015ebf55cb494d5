package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"i4.energy/across/qube/swarm"
)

//go:generate go tool mockgen -source=server.go -destination=mock_server_test.go -package=main

// Summarizer is a device that can render its state as operator text.
type Summarizer interface {
	Summary() string
}

// Modem is the satellite modem as seen by the HTTP server.
type Modem interface {
	Summarizer
	Send(ctx context.Context, payload string) error
	PositionJSON() string
}

// Server handles incoming HTTP requests for interacting with the
// configured devices
type Server struct {
	Logger *slog.Logger
	Modem  Modem
	// Devices maps console names to devices whose summary can be read.
	Devices map[string]Summarizer
	// Gatherer backs GET /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /send", s.handleSend)
	mux.HandleFunc("GET /position", s.handlePosition)
	mux.HandleFunc("GET /devices/{name}/summary", s.handleSummary)
	if s.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	mux.ServeHTTP(w, r)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	resp := ErrorResponse{Message: message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

// handleSend queues an application message for satellite transmission
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	type SendRequest struct {
		Message string `json:"message"`
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Message == "" {
		s.sendError(w, "'message' field is required", http.StatusBadRequest)
		return
	}

	if err := s.Modem.Send(r.Context(), req.Message); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, swarm.ErrMessageTooLong) {
			status = http.StatusBadRequest
		}
		s.Logger.Error("Failed to queue message", "error", err)
		s.sendError(w, err.Error(), status)
		return
	}

	s.Logger.Info("Message queued", "message_length", len(req.Message))
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, s.Modem.PositionJSON())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	d, ok := s.Devices[name]
	if !ok {
		s.sendError(w, "unknown device "+name, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, d.Summary())
}
