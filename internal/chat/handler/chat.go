package handler

import (
	"net/http"

	"liora/internal/chat/service"
	"liora/pkg/auth"
	httputil "liora/pkg/http"
	"liora/pkg/logger"
	"liora/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ChatHandler struct {
	service service.ChatService
	auth    *auth.Middleware
	log     *logger.Logger
}

func NewChatHandler(service service.ChatService, authMiddleware *auth.Middleware, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		auth:    authMiddleware,
		log:     log,
	}
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SendMessageRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Send", err)
		return
	}

	msg, err := h.service.Send(r.Context(), auth.UserID(r.Context()), &req)
	if err != nil {
		h.writeError(w, "Send", err)
		return
	}

	if err := httputil.WriteCreated(w, msg); err != nil {
		h.log.Error("failed to write created response", "handler", "Send", "operation", "WriteCreated", "error", err)
	}
}

func (h *ChatHandler) Conversations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conversations, err := h.service.Conversations(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.writeError(w, "Conversations", err)
		return
	}

	if err := httputil.WriteSuccess(w, conversations); err != nil {
		h.log.Error("failed to write success response", "handler", "Conversations", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ChatHandler) Thread(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	messages, err := h.service.Thread(r.Context(), auth.UserID(r.Context()), ps.ByName("userId"))
	if err != nil {
		h.writeError(w, "Thread", err)
		return
	}

	if err := httputil.WriteSuccess(w, messages); err != nil {
		h.log.Error("failed to write success response", "handler", "Thread", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ChatHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ChatHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/chat", h.auth.Require(h.Send))
	router.GET("/api/v1/chat/conversations", h.auth.Require(h.Conversations))
	router.GET("/api/v1/chat/with/:userId", h.auth.Require(h.Thread))
}
