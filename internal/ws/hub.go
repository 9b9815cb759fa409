// Package ws groups websocket connections by conversation and by user and
// fans events out to them. Delivery is fire-and-forget: a client that
// cannot keep up is dropped and relies on the transport's reconnection.
package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/dmikh/workmarket/internal/logger"
)

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type Broadcaster interface {
	BroadcastToConversation(conversationID string, event Event)
	NotifyUser(userID int64, event Event)
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	users map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		users: make(map[int64]map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.users[c.userID] == nil {
		h.users[c.userID] = make(map[*Client]struct{})
	}
	h.users[c.userID][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.users[c.userID], c)
	if len(h.users[c.userID]) == 0 {
		delete(h.users, c.userID)
	}
	for room := range c.rooms {
		delete(h.rooms[room], c)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
}

func (h *Hub) join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
	c.rooms[room] = struct{}{}
}

func (h *Hub) leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.rooms[room], c)
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
	delete(c.rooms, room)
}

func (h *Hub) BroadcastToConversation(conversationID string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Log.Error("failed to marshal ws event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[conversationID] {
		c.trySend(payload)
	}
}

func (h *Hub) NotifyUser(userID int64, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Log.Error("failed to marshal ws event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.users[userID] {
		c.trySend(payload)
	}
}
