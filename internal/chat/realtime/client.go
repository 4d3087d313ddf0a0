package realtime

import (
	"context"
	"encoding/json"
	"time"

	apperrors "liora/pkg/errors"
	"liora/pkg/logger"
	"liora/pkg/model"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 256
)

// Sender persists a message on behalf of a connected user.
type Sender interface {
	Send(ctx context.Context, senderID string, req *model.SendMessageRequest) (*model.Message, error)
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
	rooms  map[string]struct{}
	closed bool

	sender      Sender
	sendTimeout time.Duration
	log         *logger.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, userID string, sender Sender, sendTimeout time.Duration, log *logger.Logger) *client {
	return &client{
		hub:         hub,
		conn:        conn,
		userID:      userID,
		send:        make(chan []byte, sendBuffer),
		rooms:       make(map[string]struct{}),
		sender:      sender,
		sendTimeout: sendTimeout,
		log:         log.With("user_id", userID),
	}
}

// push queues an event for this connection only.
func (c *client) push(eventType string, payload any) {
	data, err := json.Marshal(outgoing{Type: eventType, Payload: payload})
	if err != nil {
		c.log.Error("Failed to encode chat event", "type", eventType, "error", err)
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn("Dropping chat event for slow connection", "type", eventType)
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.leave(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("Chat connection closed unexpectedly", "error", err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			c.push(EventError, errorPayload{Message: "invalid event"})
			continue
		}
		c.handle(&event)
	}
}

func (c *client) handle(event *Event) {
	switch event.Type {
	case EventJoinChat:
		var p joinPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.UserID == "" {
			c.push(EventError, errorPayload{Message: "user_id is required"})
			return
		}
		if p.UserID != c.userID {
			c.push(EventError, errorPayload{Message: "cannot join another user's chat"})
			return
		}
		c.hub.join(c, p.UserID)
		c.push(EventJoined, joinPayload{UserID: p.UserID})

	case EventSendMessage:
		var req model.SendMessageRequest
		if err := json.Unmarshal(event.Payload, &req); err != nil {
			c.push(EventError, errorPayload{Message: "invalid message payload"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), c.sendTimeout)
		msg, err := c.sender.Send(ctx, c.userID, &req)
		cancel()
		if err != nil {
			c.push(EventError, errorPayload{Message: apperrors.AsAppError(err).Message})
			return
		}
		c.push(EventMessageSent, msg)

	default:
		c.push(EventError, errorPayload{Message: "unknown event type: " + event.Type})
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
