// Package api exposes the batch gateway's HTTP surface.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"batchgate/internal/batch"
	"batchgate/internal/config"
)

// Handler serves the batch API over HTTP.
type Handler struct {
	executor     *batch.Executor
	maxBodySize  int64
	maxBatchSize int
	backendUp    func() bool
	logger       zerolog.Logger
}

// NewHandler creates a new Handler. backendUp reports the dispatch backend's
// last observed health; it may be nil when no monitor is running.
func NewHandler(executor *batch.Executor, cfg *config.Config, backendUp func() bool, logger zerolog.Logger) *Handler {
	return &Handler{
		executor:     executor,
		maxBodySize:  cfg.MaxBodySize,
		maxBatchSize: cfg.MaxBatchSize,
		backendUp:    backendUp,
		logger:       logger.With().Str("component", "api").Logger(),
	}
}

// Routes returns the router for the API surface.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestLogger(h.logger))
	r.Post("/batch", h.handleBatch)
	r.Get("/healthz", h.handleHealthz)
	return r
}

// handleBatch runs one batch and writes the aggregated document. The outer
// call reports 200 for every well-formed envelope; per-item outcomes,
// failures included, live inside the payload.
func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(r)
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			h.writeError(w, http.StatusBadRequest, "failed to read request body")
		}
		return
	}

	var req BatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Batch) == 0 {
		h.writeError(w, http.StatusBadRequest, "batch is required")
		return
	}
	if h.maxBatchSize > 0 && len(req.Batch) > h.maxBatchSize {
		h.writeError(w, http.StatusBadRequest, "batch exceeds maximum size")
		return
	}

	responses := h.executor.Run(r.Context(), req.Batch, req.IncludeHeadersValue())
	h.writeJSON(w, http.StatusOK, responses)
}

// handleHealthz reports gateway liveness and the backend's last probe result.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if h.backendUp != nil {
		if h.backendUp() {
			status["backend"] = "up"
		} else {
			status["backend"] = "down"
		}
	}
	h.writeJSON(w, http.StatusOK, status)
}

// readBody reads the request body, enforcing maxBodySize when configured.
func (h *Handler) readBody(r *http.Request) ([]byte, error) {
	if h.maxBodySize <= 0 {
		return io.ReadAll(r.Body)
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > h.maxBodySize {
		return nil, errBodyTooLarge
	}
	return body, nil
}

var errBodyTooLarge = errors.New("request body too large")

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to marshal response")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
