package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Hub is the process-wide connection registry: userID → live client.
// Pumps run on their own goroutines, so the map is mutex-guarded.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*Client),
	}
}

// Bind registers the client as the connection for its user, replacing any
// prior one (last connect wins). A replaced connection is shut down so it
// stops consuming a pump.
func (h *Hub) Bind(c *Client) {
	h.mu.Lock()
	prev := h.clients[c.userID]
	h.clients[c.userID] = c
	total := len(h.clients)
	h.mu.Unlock()

	if prev != nil && prev != c {
		log.Printf("ws hub: user %s reconnected, dropping old connection %s", c.userID, prev.socketID)
		prev.shutdown()
	}
	log.Printf("ws hub: user %s connected (%d total)", c.userID, total)
}

// Unbind removes the client only if it is still the bound connection for
// its user, so a stale disconnect never clobbers a newer reconnect.
// Reports whether the client was the current binding.
func (h *Hub) Unbind(c *Client) bool {
	h.mu.Lock()
	cur, ok := h.clients[c.userID]
	if !ok || cur != c {
		h.mu.Unlock()
		return false
	}
	delete(h.clients, c.userID)
	total := len(h.clients)
	h.mu.Unlock()

	log.Printf("ws hub: user %s disconnected (%d total)", c.userID, total)
	return true
}

// Lookup returns the live client for a user, or nil when offline.
func (h *Hub) Lookup(userID uuid.UUID) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[userID]
}

// SendToUser queues an event for the user's live connection. Reports
// whether it was handed to a connection; false means the user is offline
// or the connection's buffer is full, and the event is dropped.
func (h *Hub) SendToUser(userID uuid.UUID, evt *Event) bool {
	client := h.Lookup(userID)
	if client == nil {
		return false
	}

	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return false
	}

	select {
	case client.send <- data:
		return true
	default:
		return false
	}
}
