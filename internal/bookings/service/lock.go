package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "liora/internal/bookings/errors"
	apperrors "liora/pkg/errors"
	"liora/pkg/model"

	"github.com/google/uuid"
)

// listingLock is a per-listing lock held by one booking request.
type listingLock struct {
	svc   *bookingService
	id    string
	owner string
}

// acquireListingLock serializes booking creation per listing. The returned lock must be released
// once the booking has been inserted or rejected.
func (s *bookingService) acquireListingLock(ctx context.Context, listingID string) (*listingLock, error) {
	lockID := model.BookingLockID(listingID)
	owner := uuid.NewString()

	for attempt := 0; ; attempt++ {
		lock := &model.BookingLock{
			ID:        lockID,
			Owner:     owner,
			ExpiresAt: time.Now().UTC().Add(s.cfg.BookingLockTTL),
		}

		err := s.lockRepo.Create(ctx, lock)
		if err == nil {
			return &listingLock{svc: s, id: lockID, owner: owner}, nil
		}
		if !errors.Is(err, bookingserrors.ErrLockHeld) {
			return nil, apperrors.Internal("Failed to acquire booking lock", err)
		}

		removed, err := s.lockRepo.DeleteExpired(ctx, lockID, time.Now().UTC())
		if err != nil {
			s.cfg.Log.Warn("Failed to clear expired booking lock", "lock_id", lockID, "error", err)
		}
		if removed {
			s.cfg.Log.Warn("Removed expired booking lock", "lock_id", lockID)
			continue
		}

		if attempt >= s.cfg.BookingLockRetries {
			return nil, apperrors.Conflict("This listing is currently being booked by another request. Please try again.")
		}

		select {
		case <-ctx.Done():
			return nil, apperrors.Timeout("Timed out waiting for booking lock")
		case <-time.After(s.cfg.BookingLockRetryInterval):
		}
	}
}

// renew writes the lock document inside the booking transaction. A request whose lock expired and was
// reclaimed fails here instead of inserting next to the new holder's booking.
func (l *listingLock) renew(ctx context.Context) error {
	err := l.svc.lockRepo.Renew(ctx, l.id, l.owner, time.Now().UTC().Add(l.svc.cfg.BookingLockTTL))
	if err == nil {
		return nil
	}
	if errors.Is(err, bookingserrors.ErrLockLost) {
		l.svc.cfg.Log.Warn("Booking lock lost before insert", "lock_id", l.id)
		return apperrors.Conflict("dates unavailable")
	}
	return apperrors.Internal("Failed to renew booking lock", err)
}

func (l *listingLock) release(ctx context.Context) {
	if err := l.svc.lockRepo.Delete(context.WithoutCancel(ctx), l.id, l.owner); err != nil {
		l.svc.cfg.Log.Warn("Failed to release booking lock", "lock_id", l.id, "error", err)
	}
}
