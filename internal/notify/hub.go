package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"crypto-trading-bot/internal/logger"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub bridges the event bus to WebSocket dashboard clients. Delivery is
// best-effort: a client that cannot keep up is disconnected.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	events  <-chan Event
	unsub   func()
}

func NewHub(bus *Bus) *Hub {
	events, unsub := bus.SubscribeAll(64)
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		events:  events,
		unsub:   unsub,
	}
}

// Run pumps bus events to every connected client until the context ends.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-h.events:
			if !ok {
				return
			}
			msg, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			h.broadcast(msg)
		}
	}
}

func (h *Hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		_ = client.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := client.WriteMessage(websocket.TextMessage, msg); err != nil {
			client.Close()
			delete(h.clients, client)
		}
	}
}

// HandleWS upgrades an HTTP request and registers the connection.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn(r.Context(), "WebSocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	n := len(h.clients)
	h.mu.Unlock()
	logger.Debug(r.Context(), "Dashboard client connected", "clients", n)

	// Reader loop only detects disconnects; clients don't send commands.
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// ClientCount reports connected dashboard clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) shutdown() {
	h.unsub()
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}
