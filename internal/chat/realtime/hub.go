package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"liora/pkg/logger"
	"liora/pkg/model"
)

const (
	EventJoinChat       = "join_chat"
	EventJoined         = "joined"
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
	EventMessageSent    = "message_sent"
	EventError          = "error"
)

// Event is the envelope for every frame exchanged over the chat socket.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outgoing struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type joinPayload struct {
	UserID string `json:"user_id"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// Hub tracks live connections grouped into rooms keyed by user id.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
	log   *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*client]struct{}),
		log:   log,
	}
}

func (h *Hub) join(c *client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

// leave removes c from every room and closes its send channel. Safe to call twice.
func (h *Hub) leave(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.closed {
		return
	}
	for room := range c.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	c.closed = true
	close(c.send)
}

// Deliver pushes a receive_message event to every connection in the receiver's room.
// Connections whose buffer is full miss the event.
func (h *Hub) Deliver(msg *model.Message) int {
	data, err := json.Marshal(outgoing{Type: EventReceiveMessage, Payload: msg})
	if err != nil {
		h.log.Error("Failed to encode message event", "id", msg.ID, "error", err)
		return 0
	}
	return h.broadcast(msg.ReceiverID, data)
}

// Notify delivers to local connections only.
func (h *Hub) Notify(_ context.Context, msg *model.Message) error {
	h.Deliver(msg)
	return nil
}

func (h *Hub) broadcast(room string, data []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.rooms[room] {
		select {
		case c.send <- data:
			delivered++
		default:
			h.log.Warn("Dropping chat event for slow connection", "room", room, "user_id", c.userID)
		}
	}
	return delivered
}

// Online reports how many connections are in room.
func (h *Hub) Online(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*client, 0)
	for _, members := range h.rooms {
		for c := range members {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}
}
