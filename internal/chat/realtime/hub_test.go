package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"liora/pkg/auth"
	apperrors "liora/pkg/errors"
	"liora/pkg/logger"
	"liora/pkg/model"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guestID = "65a000000000000000000001"
	hostID  = "65a000000000000000000002"
)

// hubSender stores nothing and delivers through the hub the way the chat service does.
type hubSender struct {
	hub *Hub
	mu  sync.Mutex
	n   int
}

func (s *hubSender) Send(ctx context.Context, senderID string, req *model.SendMessageRequest) (*model.Message, error) {
	if req.ReceiverID == senderID {
		return nil, apperrors.InvalidInput("Cannot send a message to yourself")
	}
	s.mu.Lock()
	s.n++
	s.mu.Unlock()

	msg := &model.Message{
		ID:         "msg-1",
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Text:       req.Text,
		CreatedAt:  time.Now().UTC(),
	}
	return msg, s.hub.Notify(ctx, msg)
}

type testServer struct {
	server *httptest.Server
	hub    *Hub
	tokens *auth.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := logger.Discard()
	hub := NewHub(log)
	tokens := auth.NewTokenService("test-secret", time.Hour)
	handler := NewHandler(hub, tokens, &hubSender{hub: hub}, nil, time.Second, log)

	router := httprouter.New()
	handler.RegisterRoutes(router)
	server := httptest.NewServer(router)
	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})

	return &testServer{server: server, hub: hub, tokens: tokens}
}

func (ts *testServer) dial(t *testing.T, userID string) *websocket.Conn {
	t.Helper()

	token, err := ts.tokens.GenerateToken(userID, model.RoleGuest)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(ts.server.URL, "http") + "/ws/chat?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	joined := readEvent(t, conn)
	require.Equal(t, EventJoined, joined.Type)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func writeEvent(t *testing.T, conn *websocket.Conn, eventType string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Event{Type: eventType, Payload: raw}))
}

func TestHandler_RejectsMissingOrInvalidToken(t *testing.T) {
	ts := newTestServer(t)
	base := "ws" + strings.TrimPrefix(ts.server.URL, "http") + "/ws/chat"

	for _, url := range []string{base, base + "?token=garbage"} {
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestHandler_SendMessageReachesReceiverRoom(t *testing.T) {
	ts := newTestServer(t)

	host := ts.dial(t, hostID)
	guest := ts.dial(t, guestID)
	require.Equal(t, 1, ts.hub.Online(hostID))

	writeEvent(t, guest, EventSendMessage, model.SendMessageRequest{ReceiverID: hostID, Text: "Is the loft free in May?"})

	ack := readEvent(t, guest)
	assert.Equal(t, EventMessageSent, ack.Type)

	received := readEvent(t, host)
	require.Equal(t, EventReceiveMessage, received.Type)

	var msg model.Message
	require.NoError(t, json.Unmarshal(received.Payload, &msg))
	assert.Equal(t, guestID, msg.SenderID)
	assert.Equal(t, hostID, msg.ReceiverID)
	assert.Equal(t, "Is the loft free in May?", msg.Text)
}

func TestHandler_JoinChatRefusesForeignRoom(t *testing.T) {
	ts := newTestServer(t)
	guest := ts.dial(t, guestID)

	writeEvent(t, guest, EventJoinChat, joinPayload{UserID: hostID})
	event := readEvent(t, guest)
	assert.Equal(t, EventError, event.Type)
	assert.Equal(t, 0, ts.hub.Online(hostID))

	writeEvent(t, guest, EventJoinChat, joinPayload{UserID: guestID})
	event = readEvent(t, guest)
	assert.Equal(t, EventJoined, event.Type)
}

func TestHandler_SendErrorIsReported(t *testing.T) {
	ts := newTestServer(t)
	guest := ts.dial(t, guestID)

	writeEvent(t, guest, EventSendMessage, model.SendMessageRequest{ReceiverID: guestID, Text: "hi me"})
	event := readEvent(t, guest)
	require.Equal(t, EventError, event.Type)

	var p errorPayload
	require.NoError(t, json.Unmarshal(event.Payload, &p))
	assert.Equal(t, "Cannot send a message to yourself", p.Message)
}

func TestHub_DeliverDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(logger.Discard())
	c := &client{
		hub:    hub,
		userID: hostID,
		send:   make(chan []byte, 1),
		rooms:  make(map[string]struct{}),
	}
	hub.join(c, hostID)

	msg := &model.Message{ID: "m", SenderID: guestID, ReceiverID: hostID, Text: "hello"}
	assert.Equal(t, 1, hub.Deliver(msg))
	assert.Equal(t, 0, hub.Deliver(msg))
	assert.Equal(t, 0, hub.Deliver(&model.Message{ReceiverID: "nobody"}))

	hub.leave(c)
	hub.leave(c)
	assert.Equal(t, 0, hub.Online(hostID))
}
