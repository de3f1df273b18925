// Package api provides the HTTP server for the bridge.
// It exposes the sensor intake endpoints, a loopback reply endpoint for
// webhook-style chat providers, and the health/metrics surface.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/nota-bridge/nota/internal/app/engine"
	"github.com/nota-bridge/nota/internal/domain"
	"github.com/nota-bridge/nota/internal/infra/extract"
)

// Version is the reported bridge version.
const Version = "0.1.0"

// Server is the bridge HTTP API server.
type Server struct {
	engine         *engine.Engine
	extractor      *extract.Extractor
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(eng *engine.Engine, ex *extract.Extractor) *Server {
	return &Server{engine: eng, extractor: ex}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))

	// Health check and operational snapshot
	r.Get("/health", s.handleHealth)

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "nota is running",
		})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": Version,
		})
	})

	// Sensor intake
	r.Route("/api", func(r chi.Router) {
		r.Post("/event", s.handleEvent)
		r.Post("/notification", s.handleNotification)
		r.Post("/reply", s.handleReply)
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Handlers ───────────────────────────────────────────────────────────────

// handleHealth returns the operational snapshot.
// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.engine.Status(time.Now())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":            status.OK,
		"current_time":  status.CurrentTime.Format(time.RFC3339),
		"pending_count": status.PendingCount,
	})
}

// handleEvent accepts a pre-parsed amount event from the sensor.
// POST /api/event — body {"amount": <number>}
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var req struct {
		Amount json.Number `json:"amount"`
	}
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if req.Amount == "" {
		writeError(w, http.StatusBadRequest, "amount is required")
		return
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount is not a number")
		return
	}

	s.acceptAmount(w, r, amount)
}

// handleNotification accepts raw notification text and extracts the amount
// server-side, for sensors that cannot parse locally.
// POST /api/notification — body {"text": <string>}
func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	amount, ok := s.extractor.FromText(req.Text)
	if !ok {
		writeError(w, http.StatusBadRequest, "no amount found in text")
		return
	}

	s.acceptAmount(w, r, amount)
}

// acceptAmount runs one observation through the engine and writes the
// intake response.
func (s *Server) acceptAmount(w http.ResponseWriter, r *http.Request, amount decimal.Decimal) {
	id, err := s.engine.HandleAmountEvent(r.Context(), amount, time.Now())
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateAmount):
		// Duplicate delivery is expected sensor behavior, not a client error.
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"status": "duplicate",
		})
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"status":  "pending",
			"id":      id,
			"pending": s.engine.PendingCount(time.Now()),
		})
	}
}

// handleReply injects a chat reply over HTTP, for webhook-style providers
// and for testing. Authorization follows the same single-identity rule as
// the polled chat stream.
// POST /api/reply — body {"text": <string>, "sender": <string>}
func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text   string `json:"text"`
		Sender string `json:"sender"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	err := s.engine.HandleReply(r.Context(), req.Text, req.Sender)
	switch {
	case errors.Is(err, domain.ErrUnauthorizedSender):
		writeError(w, http.StatusForbidden, "sender not authorized")
	case errors.Is(err, domain.ErrNothingPending):
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "nothing_pending",
		})
	case err != nil:
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "resolved",
		})
	}
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}
