package websocket

import (
	"context"
	"sync"

	"moodchat/internal/events"
	moodchat_errors "moodchat/pkg/errors"
)

// Hub tracks live client connections by connection id and implements the
// services.Notifier contract. Who owns which connection is not its
// concern; that mapping lives in the presence registry.
type Hub struct {
	mu sync.RWMutex

	// clients maps connection ID to client
	clients map[string]*Client

	// Control channels
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Push delivers one event to one connection. Returns ErrStaleConnection
// when the connection is no longer tracked, so callers can treat the
// target as offline.
func (h *Hub) Push(connID, eventType string, payload any) error {
	h.mu.RLock()
	client, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return moodchat_errors.ErrStaleConnection
	}

	frame, err := events.Marshal(eventType, payload)
	if err != nil {
		return err
	}
	client.SendRaw(frame)
	return nil
}

// Broadcast sends an event to all connected clients.
func (h *Hub) Broadcast(eventType string, payload any) {
	frame, err := events.Marshal(eventType, payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	for _, client := range h.clients {
		client.SendRaw(frame)
	}
	h.mu.RUnlock()
}

// BroadcastExcept sends an event to every connected client but one.
func (h *Hub) BroadcastExcept(connID, eventType string, payload any) {
	frame, err := events.Marshal(eventType, payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	for id, client := range h.clients {
		if id == connID {
			continue
		}
		client.SendRaw(frame)
	}
	h.mu.RUnlock()
}

// CloseConnection forcibly closes a tracked connection. Used when a
// newer connection for the same user evicts this one; the read loop
// observes the close and tears down normally.
func (h *Hub) CloseConnection(connID string) {
	h.mu.RLock()
	client, ok := h.clients[connID]
	h.mu.RUnlock()
	if ok {
		client.Close()
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// addClient adds a new client to the hub (internal)
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
}

// removeClient removes a client and closes its send channel (internal)
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	close(client.Send)
}
