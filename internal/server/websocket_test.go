package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/interfaces"
	"github.com/smartninja/priceagent/internal/services/events"
)

func dialTestHandler(t *testing.T, h *WebSocketHandler) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocketGreeting(t *testing.T) {
	handler := NewWebSocketHandler(nil, arbor.NewLogger())
	conn := dialTestHandler(t, handler)

	msg := readMessage(t, conn)

	assert.Equal(t, "connected", msg.Type)
	assert.NotEmpty(t, msg.ServerID)
}

func TestWebSocketBroadcast(t *testing.T) {
	handler := NewWebSocketHandler(nil, arbor.NewLogger())
	conn := dialTestHandler(t, handler)
	readMessage(t, conn) // greeting

	handler.Broadcast("stage_started", map[string]interface{}{"stage": "planning"})

	msg := readMessage(t, conn)
	assert.Equal(t, "stage_started", msg.Type)
	payload, ok := msg.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "planning", payload["stage"])
}

func TestWebSocketForwardsPipelineEvents(t *testing.T) {
	logger := arbor.NewLogger()
	eventService := events.NewService(logger)
	handler := NewWebSocketHandler(eventService, logger)
	conn := dialTestHandler(t, handler)
	readMessage(t, conn) // greeting

	require.NoError(t, eventService.PublishSync(context.Background(), interfaces.Event{
		Type:    interfaces.EventPipelineStarted,
		Payload: map[string]interface{}{"model": "iPhone 15"},
	}))

	msg := readMessage(t, conn)
	assert.Equal(t, string(interfaces.EventPipelineStarted), msg.Type)
}

func TestWebSocketClientLifecycle(t *testing.T) {
	handler := NewWebSocketHandler(nil, arbor.NewLogger())
	conn := dialTestHandler(t, handler)
	readMessage(t, conn)

	assert.Equal(t, 1, handler.ClientCount())

	conn.Close()
	// The read loop notices the close and deregisters the client.
	deadline := time.Now().Add(2 * time.Second)
	for handler.ClientCount() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 0, handler.ClientCount())
}

func TestWebSocketCloseAll(t *testing.T) {
	handler := NewWebSocketHandler(nil, arbor.NewLogger())
	dialTestHandler(t, handler)
	dialTestHandler(t, handler)

	// Both clients registered before shutdown.
	deadline := time.Now().Add(2 * time.Second)
	for handler.ClientCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, 2, handler.ClientCount())

	handler.CloseAll()
	assert.Equal(t, 0, handler.ClientCount())
}
