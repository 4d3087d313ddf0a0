package payment

import (
	"context"
	"errors"
)

const (
	EventSucceeded = "payment.succeeded"
	EventFailed    = "payment.failed"
	EventCanceled  = "payment.canceled"
	EventIgnored   = "ignored"
)

var (
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
	ErrWebhookDisabled  = errors.New("payment: webhook secret not configured")
)

type Intent struct {
	ID           string
	ClientSecret string
}

// Event is a provider notification reduced to what booking confirmation needs.
type Event struct {
	ID       string
	Type     string
	IntentID string
}

type Provider interface {
	// CreateIntent reserves amount (in minor units) and returns the client secret the frontend confirms with.
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error)
	CancelIntent(ctx context.Context, intentID string) error
	ParseEvent(payload []byte, signature string) (*Event, error)
}
