package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"habitflow/internal/models"
	"habitflow/pkg/logger"
)

const writeWait = 10 * time.Second

// Hub fans change events out to the websocket connections of the user they
// belong to. Connections for other users never see the event.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*websocket.Conn]bool
}

func New() *Hub {
	return &Hub{conns: make(map[string]map[*websocket.Conn]bool)}
}

// Register adds a connection for a user. The caller owns the read loop and
// must call Unregister when it exits.
func (h *Hub) Register(ownerID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[ownerID] == nil {
		h.conns[ownerID] = make(map[*websocket.Conn]bool)
	}
	h.conns[ownerID][conn] = true
}

// Unregister removes a connection and closes it.
func (h *Hub) Unregister(ownerID string, conn *websocket.Conn) {
	h.mu.Lock()
	if set, ok := h.conns[ownerID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, ownerID)
		}
	}
	h.mu.Unlock()
	conn.Close()
}

// Broadcast sends a change event to every open connection of its owner.
// Connections that fail the write are dropped.
func (h *Hub) Broadcast(ctx context.Context, ev models.ChangeEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Error(ctx, "Failed to encode change event", "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(h.conns[ev.OwnerID]))
	for conn := range h.conns[ev.OwnerID] {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Debug(ctx, "Dropping stale websocket connection", "user_id", ev.OwnerID, "error", err)
			h.Unregister(ev.OwnerID, conn)
		}
	}
}

// Count reports the number of open connections for a user.
func (h *Hub) Count(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[ownerID])
}
