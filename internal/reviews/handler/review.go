package handler

import (
	"net/http"

	"liora/internal/reviews/service"
	"liora/pkg/auth"
	httputil "liora/pkg/http"
	"liora/pkg/logger"
	"liora/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReviewHandler struct {
	service service.ReviewService
	auth    *auth.Middleware
	log     *logger.Logger
}

func NewReviewHandler(service service.ReviewService, authMiddleware *auth.Middleware, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		auth:    authMiddleware,
		log:     log,
	}
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateReviewRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	review, err := h.service.Create(r.Context(), auth.UserID(r.Context()), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, review); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReviewHandler) GetByListing(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reviews, err := h.service.GetByListing(r.Context(), ps.ByName("listingId"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByListing", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reviews); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByListing", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReviewHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reviews", h.auth.Require(h.Create))
	router.GET("/api/v1/reviews/:listingId", h.GetByListing)
}
