package ws

import (
	"encoding/json"
	"sync"
)

// Client is one WebSocket connection subscribed to a hub.
type Client struct {
	Send   chan []byte
	hub    *Hub
	mu     sync.Mutex
	closed bool
}

func NewClient(buffer int) *Client {
	return &Client{Send: make(chan []byte, buffer)}
}

// Close unregisters the client before closing Send, so a broadcast never
// writes to a closed channel.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.hub != nil {
		c.hub.unregister(c)
	}
	close(c.Send)
}

// Hub maintains the set of active clients and broadcasts to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// BroadcastAll queues payload for every client. Clients with a full buffer miss the message.
func (h *Hub) BroadcastAll(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.Send <- data:
		default:
		}
	}
	return nil
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
