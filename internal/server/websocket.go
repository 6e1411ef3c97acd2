package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/interfaces"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local tool, no cross-origin policy
	},
}

// broadcastEvents is the set of pipeline events forwarded to
// connected WebSocket clients.
var broadcastEvents = []interfaces.EventType{
	interfaces.EventPipelineStarted,
	interfaces.EventPipelineCompleted,
	interfaces.EventPipelineError,
	interfaces.EventStageStarted,
	interfaces.EventStageCompleted,
	interfaces.EventScrapeStarted,
	interfaces.EventScrapeCompleted,
	interfaces.EventAlertTriggered,
}

// wsMessage is the wire format for one forwarded event.
type wsMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
	ServerID  string      `json:"server_id"`
}

// WebSocketHandler streams pipeline events to connected clients. Each
// connection has its own write mutex; a failed write drops that client
// without affecting the others.
type WebSocketHandler struct {
	logger           arbor.ILogger
	clients          map[*websocket.Conn]*sync.Mutex
	mu               sync.RWMutex
	serverInstanceID string
}

// NewWebSocketHandler creates the handler and subscribes it to the
// pipeline event stream.
func NewWebSocketHandler(events interfaces.EventService, logger arbor.ILogger) *WebSocketHandler {
	h := &WebSocketHandler{
		logger:           logger,
		clients:          make(map[*websocket.Conn]*sync.Mutex),
		serverInstanceID: uuid.New().String(),
	}

	if events != nil {
		for _, eventType := range broadcastEvents {
			et := eventType
			_ = events.Subscribe(et, func(ctx context.Context, event interfaces.Event) error {
				h.Broadcast(string(event.Type), event.Payload)
				return nil
			})
		}
	}

	return h
}

// HandleWebSocket upgrades the connection and registers the client.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Int("clients", count).Msg("WebSocket client connected")

	// Greeting lets clients detect server restarts across reconnects.
	h.sendTo(conn, wsMessage{
		Type:      "connected",
		Timestamp: time.Now().Format(time.RFC3339),
		ServerID:  h.serverInstanceID,
	})

	// Reads are discarded; the read loop exists to detect disconnects.
	go h.readLoop(conn)
}

func (h *WebSocketHandler) readLoop(conn *websocket.Conn) {
	defer h.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends an event to every connected client.
func (h *WebSocketHandler) Broadcast(eventType string, payload interface{}) {
	msg := wsMessage{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().Format(time.RFC3339),
		ServerID:  h.serverInstanceID,
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		h.sendTo(conn, msg)
	}
}

func (h *WebSocketHandler) sendTo(conn *websocket.Conn, msg wsMessage) {
	h.mu.RLock()
	writeMu, ok := h.clients[conn]
	h.mu.RUnlock()
	if !ok {
		return
	}

	writeMu.Lock()
	err := conn.WriteJSON(msg)
	writeMu.Unlock()

	if err != nil {
		h.logger.Debug().Err(err).Msg("WebSocket write failed, dropping client")
		h.remove(conn)
	}
}

func (h *WebSocketHandler) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll disconnects every client, used during shutdown.
func (h *WebSocketHandler) CloseAll() {
	h.mu.Lock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
	h.mu.Unlock()
}
