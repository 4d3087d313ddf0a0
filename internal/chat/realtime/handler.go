package realtime

import (
	"net/http"
	"slices"
	"time"

	"liora/pkg/auth"
	apperrors "liora/pkg/errors"
	httputil "liora/pkg/http"
	"liora/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	hub         *Hub
	tokens      *auth.TokenService
	sender      Sender
	sendTimeout time.Duration
	upgrader    websocket.Upgrader
	log         *logger.Logger
}

// NewHandler builds the websocket endpoint. An empty allowedOrigins list accepts any origin.
func NewHandler(hub *Hub, tokens *auth.TokenService, sender Sender, allowedOrigins []string, sendTimeout time.Duration, log *logger.Logger) *Handler {
	return &Handler{
		hub:         hub,
		tokens:      tokens,
		sender:      sender,
		sendTimeout: sendTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
					return true
				}
				return slices.Contains(allowedOrigins, origin)
			},
		},
		log: log,
	}
}

// ServeChat authenticates the token query parameter before upgrading and joins the caller's own room.
func (h *Handler) ServeChat(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.writeError(w, apperrors.Unauthorized("Token is required"))
		return
	}
	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		h.writeError(w, apperrors.Unauthorized("Invalid or expired token"))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "user_id", claims.UserID, "error", err)
		return
	}

	c := newClient(h.hub, conn, claims.UserID, h.sender, h.sendTimeout, h.log)
	h.hub.join(c, claims.UserID)
	c.push(EventJoined, joinPayload{UserID: claims.UserID})

	go c.writePump()
	go c.readPump()
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response",
			"handler", "ServeChat",
			"operation", "WriteError",
			"error", writeErr,
		)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/ws/chat", h.ServeChat)
}
