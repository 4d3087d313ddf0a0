package handler

import (
	"net/http"

	"liora/internal/users/service"
	"liora/pkg/auth"
	httputil "liora/pkg/http"
	"liora/pkg/logger"
	"liora/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AuthHandler struct {
	service service.UserService
	auth    *auth.Middleware
	log     *logger.Logger
}

func NewAuthHandler(service service.UserService, authMiddleware *auth.Middleware, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		auth:    authMiddleware,
		log:     log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Register", err)
		return
	}

	result, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}

	h.auth.SetCookie(w, result.Token)
	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Login", err)
		return
	}

	result, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Login", err)
		return
	}

	h.auth.SetCookie(w, result.Token)
	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	h.auth.ClearCookie(w)
	if err := httputil.WriteSuccess(w, map[string]string{"message": "Logged out successfully"}); err != nil {
		h.log.Error("failed to write success response", "handler", "Logout", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuthHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AuthHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/register", h.Register)
	router.POST("/api/v1/auth/login", h.Login)
	router.POST("/api/v1/auth/logout", h.Logout)
}
