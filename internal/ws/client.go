package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"batchgate/internal/api"
	"batchgate/internal/batch"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 10 * 1024 * 1024 // 10MB
)

// Client represents a WebSocket client connection. Each inbound text message
// is one batch envelope; the aggregated document is sent back on the same
// connection.
type Client struct {
	conn     *websocket.Conn
	executor *batch.Executor
	logger   zerolog.Logger

	sendChan  chan []byte
	closeChan chan struct{}
	closeOnce sync.Once
}

// NewClient creates a new WebSocket client.
func NewClient(conn *websocket.Conn, executor *batch.Executor, logger zerolog.Logger) *Client {
	return &Client{
		conn:      conn,
		executor:  executor,
		logger:    logger,
		sendChan:  make(chan []byte, 16),
		closeChan: make(chan struct{}),
	}
}

// Run starts the client read and write loops.
func (c *Client) Run(ctx context.Context) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.writePump(ctx)

	// Read loop (runs in current goroutine)
	c.readPump(ctx)
}

// Close terminates the connection.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closeChan)
		c.conn.Close()
	})
}

// readPump reads messages from the WebSocket connection.
func (c *Client) readPump(ctx context.Context) {
	defer c.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closeChan:
			return
		default:
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug().Err(err).Msg("read error")
			}
			return
		}

		c.handleMessage(ctx, data)
	}
}

// writePump writes messages to the WebSocket connection.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closeChan:
			return
		case data := <-c.sendChan:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug().Err(err).Msg("write error")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes one inbound batch envelope.
func (c *Client) handleMessage(ctx context.Context, data []byte) {
	var req api.BatchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.sendError("invalid request body")
		return
	}
	if len(req.Batch) == 0 {
		c.sendError("batch is required")
		return
	}

	responses := c.executor.Run(ctx, req.Batch, req.IncludeHeadersValue())

	payload, err := json.Marshal(responses)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to marshal batch responses")
		c.sendError("internal error")
		return
	}
	c.send(payload)
}

func (c *Client) sendError(message string) {
	payload, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return
	}
	c.send(payload)
}

func (c *Client) send(data []byte) {
	select {
	case c.sendChan <- data:
	case <-c.closeChan:
	}
}
