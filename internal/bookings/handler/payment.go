package handler

import (
	"errors"
	"io"
	"net/http"

	"liora/internal/bookings/service"
	apperrors "liora/pkg/errors"
	httputil "liora/pkg/http"
	"liora/pkg/logger"
	"liora/pkg/payment"

	"github.com/julienschmidt/httprouter"
)

const (
	SignatureHeader = "Stripe-Signature"

	maxWebhookBytes = 64 << 10
)

// PaymentWebhookHandler applies provider notifications to pending bookings.
type PaymentWebhookHandler struct {
	service  service.BookingService
	provider payment.Provider
	log      *logger.Logger
}

func NewPaymentWebhookHandler(service service.BookingService, provider payment.Provider, log *logger.Logger) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{
		service:  service,
		provider: provider,
		log:      log,
	}
}

func (h *PaymentWebhookHandler) Webhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h.provider == nil {
		h.writeError(w, apperrors.Unavailable("Payments"))
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		h.writeError(w, apperrors.InvalidInput("Failed to read webhook body"))
		return
	}

	event, err := h.provider.ParseEvent(payload, r.Header.Get(SignatureHeader))
	if err != nil {
		if errors.Is(err, payment.ErrWebhookDisabled) {
			h.writeError(w, apperrors.Unavailable("Payment webhooks"))
			return
		}
		h.log.WithContext(r.Context()).Warn("Rejected payment webhook", "error", err)
		h.writeError(w, apperrors.InvalidInput("Invalid webhook signature"))
		return
	}

	switch event.Type {
	case payment.EventSucceeded:
		err = h.service.ConfirmPayment(r.Context(), event.IntentID)
	case payment.EventFailed, payment.EventCanceled:
		err = h.service.FailPayment(r.Context(), event.IntentID)
	default:
		h.log.Debug("Ignoring payment event", "event_id", event.ID, "type", event.Type)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]bool{"received": true}); err != nil {
		h.log.Error("failed to write success response", "handler", "Webhook", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentWebhookHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "Webhook", "operation", "WriteError", "error", writeErr)
	}
}

func (h *PaymentWebhookHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/payments/webhook", h.Webhook)
}
