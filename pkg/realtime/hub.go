package realtime

import (
	"context"
	"sync"

	"github.com/memalerts/rewards-backend/pkg/logger"
)

// Message is one event pushed to connected clients.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub tracks live client connections by room and fans messages out to them.
// Rooms are plain strings ("user:<id>"); a client may sit in several rooms.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	logg  *logger.Logger
}

// NewHub returns an empty hub. The logger may be nil.
func NewHub(logg *logger.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		logg:  logg,
	}
}

// Join registers the client in the named room.
func (h *Hub) Join(room string, client *Client) {
	if room == "" || client == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[client] = struct{}{}
}

// Leave removes the client from every room it joined and drops its send queue.
func (h *Hub) Leave(client *Client) {
	if client == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, members := range h.rooms {
		if _, ok := members[client]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	client.closeSend()
}

// Publish delivers the event to every client in the room. Slow clients whose
// send queue is full miss the message instead of blocking the publisher.
func (h *Hub) Publish(room, event string, data any) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[room]))
	for client := range h.rooms[room] {
		members = append(members, client)
	}
	h.mu.RUnlock()

	msg := Message{Event: event, Data: data}
	for _, client := range members {
		if !client.enqueue(msg) && h.logg != nil {
			ctx := h.logg.WithFields(context.Background(), map[string]any{
				"room":  room,
				"event": event,
			})
			h.logg.Warn(ctx, "realtime send queue full, dropping message")
		}
	}
}

// RoomSize reports how many clients sit in the room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
