// Package ws carries the batch envelope over WebSocket connections: one text
// message in, one aggregated document out.
package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"batchgate/internal/batch"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// Handler handles WebSocket connections.
type Handler struct {
	executor *batch.Executor
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(executor *batch.Executor, logger zerolog.Logger) *Handler {
	return &Handler{
		executor: executor,
		logger:   logger.With().Str("component", "ws").Logger(),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to upgrade connection")
		return
	}

	h.logger.Info().Str("remoteAddr", r.RemoteAddr).Msg("new WebSocket connection")

	client := NewClient(conn, h.executor, h.logger.With().Str("remoteAddr", r.RemoteAddr).Logger())
	client.Run(r.Context())
}
