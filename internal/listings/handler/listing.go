package handler

import (
	"net/http"

	"liora/internal/listings/service"
	"liora/pkg/auth"
	httputil "liora/pkg/http"
	"liora/pkg/logger"
	"liora/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ListingHandler struct {
	service service.ListingService
	auth    *auth.Middleware
	log     *logger.Logger
}

func NewListingHandler(service service.ListingService, authMiddleware *auth.Middleware, log *logger.Logger) *ListingHandler {
	return &ListingHandler{
		service: service,
		auth:    authMiddleware,
		log:     log,
	}
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input model.ListingInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	listing, err := h.service.Create(r.Context(), auth.UserID(r.Context()), &input)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, listing); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ListingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	listing, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, listing); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, err := parseFilter(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	page, err := h.service.Search(r.Context(), filter)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WriteSuccess(w, page); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ListingHandler) GetByHost(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	listings, err := h.service.GetByHost(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.writeError(w, "GetByHost", err)
		return
	}

	if err := httputil.WriteSuccess(w, listings); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByHost", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var upd model.ListingUpdate
	if err := httputil.DecodeJSON(r, &upd); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	listing, err := h.service.Update(r.Context(), auth.UserID(r.Context()), ps.ByName("id"), &upd)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, listing); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), auth.UserID(r.Context()), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ListingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func parseFilter(r *http.Request) (model.ListingFilter, error) {
	query := r.URL.Query()
	filter := model.ListingFilter{
		Location: query.Get("location"),
		Type:     query.Get("type"),
	}

	var err error
	if filter.Page, filter.Limit, err = httputil.ExtractPage(r); err != nil {
		return filter, err
	}
	if filter.MinPrice, err = httputil.QueryFloat(r, "min_price"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = httputil.QueryFloat(r, "max_price"); err != nil {
		return filter, err
	}
	if filter.Bedrooms, err = httputil.QueryInt(r, "bedrooms"); err != nil {
		return filter, err
	}
	if filter.Bathrooms, err = httputil.QueryInt(r, "bathrooms"); err != nil {
		return filter, err
	}
	if filter.MaxGuests, err = httputil.QueryInt(r, "max_guests"); err != nil {
		return filter, err
	}
	return filter, nil
}

func (h *ListingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/listings", h.Search)
	router.POST("/api/v1/listings", h.auth.RequireRole(model.RoleHost, h.Create))
	router.GET("/api/v1/listings/host", h.auth.RequireRole(model.RoleHost, h.GetByHost))
	router.GET("/api/v1/listings/id/:id", h.GetByID)
	router.PUT("/api/v1/listings/id/:id", h.auth.Require(h.Update))
	router.DELETE("/api/v1/listings/id/:id", h.auth.Require(h.Delete))
}
