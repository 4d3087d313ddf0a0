package validator

import (
	"errors"
	"testing"
	"time"

	"liora/pkg/logger"
	"liora/pkg/model"
	"liora/pkg/validator"
)

func TestValidateStay(t *testing.T) {
	v := NewBookingValidator(logger.Discard())
	const listingID = "65b000000000000000000001"

	tests := []struct {
		name      string
		req       model.CreateBookingRequest
		wantField string
		wantIn    time.Time
		wantOut   time.Time
	}{
		{
			name:    "plain dates",
			req:     model.CreateBookingRequest{ListingID: listingID, CheckIn: "2024-01-01", CheckOut: "2024-01-03"},
			wantIn:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantOut: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "rfc3339 normalized to midnight",
			req:     model.CreateBookingRequest{ListingID: listingID, CheckIn: "2024-01-01T15:00:00Z", CheckOut: "2024-01-02T11:00:00Z"},
			wantIn:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantOut: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "same day",
			req:       model.CreateBookingRequest{ListingID: listingID, CheckIn: "2024-01-01", CheckOut: "2024-01-01"},
			wantField: "check_out",
		},
		{
			name:      "reversed",
			req:       model.CreateBookingRequest{ListingID: listingID, CheckIn: "2024-01-05", CheckOut: "2024-01-01"},
			wantField: "check_out",
		},
		{
			name:      "garbage check-in",
			req:       model.CreateBookingRequest{ListingID: listingID, CheckIn: "next friday", CheckOut: "2024-01-01"},
			wantField: "check_in",
		},
		{
			name:      "bad listing id",
			req:       model.CreateBookingRequest{ListingID: "abc", CheckIn: "2024-01-01", CheckOut: "2024-01-02"},
			wantField: "listing_id",
		},
		{
			name:      "missing check-out",
			req:       model.CreateBookingRequest{ListingID: listingID, CheckIn: "2024-01-01"},
			wantField: "check_out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stay, err := v.ValidateStay(&tt.req)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !stay.CheckIn.Equal(tt.wantIn) || !stay.CheckOut.Equal(tt.wantOut) {
					t.Errorf("stay = %v..%v, want %v..%v", stay.CheckIn, stay.CheckOut, tt.wantIn, tt.wantOut)
				}
				return
			}

			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if verrs[0].Field != tt.wantField {
				t.Errorf("field = %s, want %s", verrs[0].Field, tt.wantField)
			}
		})
	}
}
