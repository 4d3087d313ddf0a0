package service

import (
	"context"
	"time"

	"liora/internal/bookings/repository"
	"liora/pkg/model"
)

// Overlaps reports whether [aIn, aOut) and [bIn, bOut) share at least one night.
// A stay that checks out on the day another checks in does not overlap it.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && aOut.After(bIn)
}

// conflicting returns the first active booking in existing that overlaps the candidate stay.
func conflicting(existing []*model.Booking, checkIn, checkOut time.Time) *model.Booking {
	for _, b := range existing {
		if b.IsActive() && Overlaps(b.CheckIn, b.CheckOut, checkIn, checkOut) {
			return b
		}
	}
	return nil
}

// isAvailable queries candidate conflicts and filters them again in memory so a loose store query cannot
// produce a false conflict.
func isAvailable(ctx context.Context, repo repository.BookingRepository, listingID string, checkIn, checkOut time.Time) (bool, error) {
	existing, err := repo.FindOverlapping(ctx, listingID, checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return conflicting(existing, checkIn, checkOut) == nil, nil
}
