package service

import (
	"context"

	apperrors "liora/pkg/errors"
	"liora/pkg/model"
)

// hydrate attaches listing summaries and, when withGuest is set, the guest's name and email.
// Missing listings or users leave the corresponding field nil.
func (s *bookingService) hydrate(ctx context.Context, bookings []*model.Booking, withGuest bool) ([]*model.BookingView, error) {
	views := make([]*model.BookingView, 0, len(bookings))
	if len(bookings) == 0 {
		return views, nil
	}

	listingIDs := make([]string, 0, len(bookings))
	guestIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		listingIDs = append(listingIDs, b.ListingID)
		guestIDs = append(guestIDs, b.GuestID)
	}

	listings, err := s.listings.FindByIDs(ctx, listingIDs)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve booking listings", err)
	}
	listingByID := make(map[string]*model.Listing, len(listings))
	for _, l := range listings {
		listingByID[l.ID] = l
	}

	guestByID := map[string]*model.User{}
	if withGuest && s.users != nil {
		guests, err := s.users.FindByIDs(ctx, guestIDs)
		if err != nil {
			return nil, apperrors.Internal("Failed to retrieve booking guests", err)
		}
		for _, u := range guests {
			guestByID[u.ID] = u
		}
	}

	for _, b := range bookings {
		view := &model.BookingView{Booking: b}
		if l, ok := listingByID[b.ListingID]; ok {
			view.Listing = l.Summary()
		}
		if u, ok := guestByID[b.GuestID]; ok {
			view.Guest = u.Summary(true)
		}
		views = append(views, view)
	}
	return views, nil
}
