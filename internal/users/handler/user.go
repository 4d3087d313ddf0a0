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

type UserHandler struct {
	service service.UserService
	auth    *auth.Middleware
	log     *logger.Logger
}

func NewUserHandler(service service.UserService, authMiddleware *auth.Middleware, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		auth:    authMiddleware,
		log:     log,
	}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, err := h.service.GetProfile(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetProfile", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "GetProfile", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var upd model.ProfileUpdate
	if err := httputil.DecodeJSON(r, &upd); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateProfile", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), auth.UserID(r.Context()), &upd)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateProfile", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateProfile", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.WishlistToggleRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ToggleWishlist", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	wishlist, err := h.service.ToggleWishlist(r.Context(), auth.UserID(r.Context()), req.ListingID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ToggleWishlist", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, wishlist); err != nil {
		h.log.Error("failed to write success response", "handler", "ToggleWishlist", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) GetWishlist(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	listings, err := h.service.GetWishlist(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetWishlist", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, listings); err != nil {
		h.log.Error("failed to write success response", "handler", "GetWishlist", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/users/profile", h.auth.Require(h.GetProfile))
	router.PUT("/api/v1/users/profile", h.auth.Require(h.UpdateProfile))
	router.POST("/api/v1/users/wishlist", h.auth.Require(h.ToggleWishlist))
	router.GET("/api/v1/users/wishlist", h.auth.Require(h.GetWishlist))
}
