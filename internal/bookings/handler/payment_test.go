package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"liora/internal/bookings/service"
	"liora/pkg/logger"
	"liora/pkg/payment"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

type recordingService struct {
	service.BookingService
	confirmed []string
	failed    []string
}

func (s *recordingService) ConfirmPayment(_ context.Context, intentID string) error {
	s.confirmed = append(s.confirmed, intentID)
	return nil
}

func (s *recordingService) FailPayment(_ context.Context, intentID string) error {
	s.failed = append(s.failed, intentID)
	return nil
}

type staticProvider struct {
	event *payment.Event
	err   error
}

func (p *staticProvider) CreateIntent(context.Context, int64, string, map[string]string) (*payment.Intent, error) {
	return nil, nil
}

func (p *staticProvider) CancelIntent(context.Context, string) error { return nil }

func (p *staticProvider) ParseEvent([]byte, string) (*payment.Event, error) {
	return p.event, p.err
}

func serveWebhook(svc service.BookingService, provider payment.Provider) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewPaymentWebhookHandler(svc, provider, logger.Discard()).RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", strings.NewReader(`{}`))
	req.Header.Set(SignatureHeader, "t=1,v1=abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_Dispatch(t *testing.T) {
	tests := []struct {
		name          string
		eventType     string
		wantConfirmed []string
		wantFailed    []string
	}{
		{"succeeded confirms", payment.EventSucceeded, []string{"pi_1"}, nil},
		{"failed cancels", payment.EventFailed, nil, []string{"pi_1"}},
		{"canceled cancels", payment.EventCanceled, nil, []string{"pi_1"}},
		{"other events ignored", payment.EventIgnored, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &recordingService{}
			provider := &staticProvider{event: &payment.Event{ID: "evt_1", Type: tt.eventType, IntentID: "pi_1"}}

			rec := serveWebhook(svc, provider)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantConfirmed, svc.confirmed)
			assert.Equal(t, tt.wantFailed, svc.failed)
		})
	}
}

func TestWebhook_BadSignature(t *testing.T) {
	svc := &recordingService{}
	rec := serveWebhook(svc, &staticProvider{err: payment.ErrInvalidSignature})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.confirmed)
}

func TestWebhook_PaymentsDisabled(t *testing.T) {
	rec := serveWebhook(&recordingService{}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

