package model

import "time"

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// ActiveBookingStatuses are the statuses that hold a listing's dates.
var ActiveBookingStatuses = []string{BookingPending, BookingConfirmed}

type Booking struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty"`
	ListingID       string    `json:"listing_id" bson:"listing_id"`
	GuestID         string    `json:"guest_id" bson:"guest_id"`
	HostID          string    `json:"host_id" bson:"host_id"`
	CheckIn         time.Time `json:"check_in" bson:"check_in"`
	CheckOut        time.Time `json:"check_out" bson:"check_out"`
	Nights          int       `json:"nights" bson:"nights"`
	TotalPrice      float64   `json:"total_price" bson:"total_price"`
	Currency        string    `json:"currency" bson:"currency"`
	Status          string    `json:"status" bson:"status"`
	PaymentIntentID string    `json:"payment_intent_id,omitempty" bson:"payment_intent_id,omitempty"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

func (b *Booking) IsActive() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}

// InvolvesUser reports whether userID is the guest or the host of the booking.
func (b *Booking) InvolvesUser(userID string) bool {
	return userID != "" && (b.GuestID == userID || b.HostID == userID)
}

type CreateBookingRequest struct {
	ListingID string `json:"listing_id" validate:"required,mongodb"`
	CheckIn   string `json:"check_in" validate:"required"`
	CheckOut  string `json:"check_out" validate:"required"`
}

type BookingResult struct {
	Booking      *Booking `json:"booking"`
	ClientSecret string   `json:"client_secret,omitempty"`
}

type Availability struct {
	ListingID  string    `json:"listing_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Available  bool      `json:"available"`
	Nights     int       `json:"nights"`
	TotalPrice float64   `json:"total_price"`
}
