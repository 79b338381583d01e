package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"batchgate/internal/batch"
	"batchgate/internal/jsonpath"
)

type fakeDispatcher struct {
	results map[string]*batch.DispatchResult
}

func (d *fakeDispatcher) Dispatch(_ context.Context, _, relativeURL string, _ map[string]string) (*batch.DispatchResult, error) {
	if res, ok := d.results[relativeURL]; ok {
		return res, nil
	}
	return &batch.DispatchResult{Code: http.StatusNotFound, Body: "not found"}, nil
}

func dialTestServer(t *testing.T, d batch.Dispatcher) *websocket.Conn {
	t.Helper()

	executor := batch.NewExecutor(d, jsonpath.Evaluate, zerolog.Nop())
	srv := httptest.NewServer(NewHandler(executor, zerolog.Nop()))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestHandler_BatchOverWebSocket(t *testing.T) {
	conn := dialTestServer(t, &fakeDispatcher{results: map[string]*batch.DispatchResult{
		"/a": {Code: 200, Body: "hello"},
	}})

	err := conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"batch":[{"method":"GET","relative_url":"/a"}],"include_headers":false}`))
	require.NoError(t, err)

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var decoded map[string]struct {
		Code int    `json:"code"`
		Body string `json:"body"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Contains(t, decoded, "0")
	assert.Equal(t, 200, decoded["0"].Code)
	assert.Equal(t, "hello", decoded["0"].Body)
}

func TestHandler_InvalidEnvelope(t *testing.T) {
	conn := dialTestServer(t, &fakeDispatcher{})

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{not json`)))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded["error"], "invalid")
}

func TestHandler_EmptyBatch(t *testing.T) {
	conn := dialTestServer(t, &fakeDispatcher{})

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"batch":[]}`)))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), "batch is required")
}
