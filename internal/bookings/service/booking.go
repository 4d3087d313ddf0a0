package service

import (
	"context"
	"errors"

	"liora/internal/bookings/events"
	bookingserrors "liora/internal/bookings/errors"
	"liora/internal/bookings/repository"
	bookingvalidator "liora/internal/bookings/validator"
	listingserrors "liora/internal/listings/errors"
	"liora/pkg/config"
	apperrors "liora/pkg/errors"
	"liora/pkg/model"
	"liora/pkg/payment"
	"liora/pkg/validator"
)

type BookingService interface {
	CheckAvailability(ctx context.Context, listingID, checkIn, checkOut string) (*model.Availability, error)
	Create(ctx context.Context, guestID string, req *model.CreateBookingRequest) (*model.BookingResult, error)
	GetByID(ctx context.Context, userID, id string) (*model.BookingView, error)
	MyTrips(ctx context.Context, guestID string) ([]*model.BookingView, error)
	HostBookings(ctx context.Context, hostID string) ([]*model.BookingView, error)
	Cancel(ctx context.Context, userID, id string) (*model.Booking, error)
	ConfirmPayment(ctx context.Context, intentID string) error
	FailPayment(ctx context.Context, intentID string) error
}

type ListingReader interface {
	FindByID(ctx context.Context, id string) (*model.Listing, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Listing, error)
}

type UserReader interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.User, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	listings  ListingReader
	users     UserReader
	payments  payment.Provider
	events    events.Publisher
	validator *bookingvalidator.BookingValidator
	cfg       *config.Config
}

// NewBookingService wires the booking flow. payments may be nil, in which case bookings are confirmed
// immediately without a payment intent.
func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	listings ListingReader,
	users UserReader,
	payments payment.Provider,
	publisher events.Publisher,
	validator *bookingvalidator.BookingValidator,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		listings:  listings,
		users:     users,
		payments:  payments,
		events:    publisher,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *bookingService) CheckAvailability(ctx context.Context, listingID, checkIn, checkOut string) (*model.Availability, error) {
	stay, err := s.validator.ValidateStay(&model.CreateBookingRequest{
		ListingID: listingID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
	})
	if err != nil {
		return nil, validator.ToAppError("Invalid stay dates", err)
	}

	listing, err := s.findListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	available, err := isAvailable(ctx, s.repo, listingID, stay.CheckIn, stay.CheckOut)
	if err != nil {
		s.cfg.Log.Error("Failed to check availability", "listing_id", listingID, "error", err)
		return nil, apperrors.Internal("Failed to check availability", err)
	}

	nights := model.Nights(stay.CheckIn, stay.CheckOut)
	return &model.Availability{
		ListingID:  listingID,
		CheckIn:    stay.CheckIn,
		CheckOut:   stay.CheckOut,
		Available:  available,
		Nights:     nights,
		TotalPrice: model.TotalPrice(listing.Price, nights),
	}, nil
}

func (s *bookingService) Create(ctx context.Context, guestID string, req *model.CreateBookingRequest) (*model.BookingResult, error) {
	stay, err := s.validator.ValidateStay(req)
	if err != nil {
		s.cfg.Log.Warn("Booking validation failed", "guest_id", guestID, "error", err)
		return nil, validator.ToAppError("Booking validation failed", err)
	}

	listing, err := s.findListing(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}

	lock, err := s.acquireListingLock(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	defer lock.release(ctx)

	available, err := isAvailable(ctx, s.repo, listing.ID, stay.CheckIn, stay.CheckOut)
	if err != nil {
		return nil, apperrors.Internal("Failed to check availability", err)
	}
	if !available {
		s.cfg.Log.Info("Booking rejected, dates unavailable",
			"listing_id", listing.ID,
			"check_in", stay.CheckIn,
			"check_out", stay.CheckOut,
		)
		return nil, apperrors.Conflict("dates unavailable")
	}

	nights := model.Nights(stay.CheckIn, stay.CheckOut)
	booking := &model.Booking{
		ListingID:  listing.ID,
		GuestID:    guestID,
		HostID:     listing.HostID,
		CheckIn:    stay.CheckIn,
		CheckOut:   stay.CheckOut,
		Nights:     nights,
		TotalPrice: model.TotalPrice(listing.Price, nights),
		Currency:   s.cfg.PaymentCurrency,
		Status:     model.BookingConfirmed,
	}

	var intent *payment.Intent
	if s.payments != nil {
		intent, err = s.payments.CreateIntent(ctx, model.MinorUnits(booking.TotalPrice), booking.Currency, map[string]string{
			"listing_id": listing.ID,
			"guest_id":   guestID,
		})
		if err != nil {
			s.cfg.Log.Error("Payment intent creation failed", "listing_id", listing.ID, "error", err)
			return nil, apperrors.PaymentFailure("Payment provider rejected the booking", err)
		}
		booking.Status = model.BookingPending
		booking.PaymentIntentID = intent.ID
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := lock.renew(txCtx); err != nil {
			return err
		}
		available, err := isAvailable(txCtx, s.repo, listing.ID, stay.CheckIn, stay.CheckOut)
		if err != nil {
			return apperrors.Internal("Failed to check availability", err)
		}
		if !available {
			return apperrors.Conflict("dates unavailable")
		}
		if err := s.repo.Create(txCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		if intent != nil {
			s.cancelIntent(ctx, intent.ID)
		}
		s.cfg.Log.Error("Failed to create booking", "listing_id", listing.ID, "error", err)
		return nil, err
	}

	s.publish(ctx, model.EventBookingCreated, booking)

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"listing_id", booking.ListingID,
		"guest_id", booking.GuestID,
		"status", booking.Status,
		"check_in", booking.CheckIn,
		"check_out", booking.CheckOut,
	)

	result := &model.BookingResult{Booking: booking}
	if intent != nil {
		result.ClientSecret = intent.ClientSecret
	}
	return result, nil
}

func (s *bookingService) GetByID(ctx context.Context, userID, id string) (*model.BookingView, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.InvolvesUser(userID) {
		return nil, apperrors.Forbidden("Not authorized to view this booking")
	}

	views, err := s.hydrate(ctx, []*model.Booking{booking}, userID == booking.HostID)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *bookingService) MyTrips(ctx context.Context, guestID string) ([]*model.BookingView, error) {
	bookings, err := s.repo.FindByGuest(ctx, guestID)
	if err != nil {
		s.cfg.Log.Error("Failed to list guest bookings", "guest_id", guestID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return s.hydrate(ctx, bookings, false)
}

func (s *bookingService) HostBookings(ctx context.Context, hostID string) ([]*model.BookingView, error) {
	bookings, err := s.repo.FindByHost(ctx, hostID)
	if err != nil {
		s.cfg.Log.Error("Failed to list host bookings", "host_id", hostID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return s.hydrate(ctx, bookings, true)
}

// Cancel moves a pending booking to cancelled on behalf of its guest or host.
func (s *bookingService) Cancel(ctx context.Context, userID, id string) (*model.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.InvolvesUser(userID) {
		return nil, apperrors.Forbidden("Not authorized to cancel this booking")
	}
	if booking.Status != model.BookingPending {
		return nil, apperrors.Conflict("Only pending bookings can be cancelled")
	}

	updated, err := s.repo.UpdateStatus(ctx, id, model.BookingPending, model.BookingCancelled)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			return nil, apperrors.Conflict("Only pending bookings can be cancelled")
		}
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}

	if updated.PaymentIntentID != "" {
		s.cancelIntent(ctx, updated.PaymentIntentID)
	}
	s.publish(ctx, model.EventBookingCancelled, updated)

	s.cfg.Log.Info("Booking cancelled", "id", id, "by", userID)
	return updated, nil
}

func (s *bookingService) ConfirmPayment(ctx context.Context, intentID string) error {
	return s.settlePayment(ctx, intentID, model.BookingConfirmed, model.EventBookingConfirmed)
}

func (s *bookingService) FailPayment(ctx context.Context, intentID string) error {
	return s.settlePayment(ctx, intentID, model.BookingCancelled, model.EventBookingCancelled)
}

// settlePayment applies a provider outcome to the pending booking holding intentID.
// Unknown intents and already settled bookings are ignored so webhook redelivery is harmless.
func (s *bookingService) settlePayment(ctx context.Context, intentID, status, eventType string) error {
	if intentID == "" {
		return nil
	}

	booking, err := s.repo.FindByPaymentIntent(ctx, intentID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			s.cfg.Log.Warn("Payment event for unknown intent ignored", "intent_id", intentID)
			return nil
		}
		return apperrors.Internal("Failed to find booking for payment", err)
	}
	if booking.Status != model.BookingPending {
		s.cfg.Log.Debug("Payment event for settled booking ignored", "id", booking.ID, "status", booking.Status)
		return nil
	}

	updated, err := s.repo.UpdateStatus(ctx, booking.ID, model.BookingPending, status)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			return nil
		}
		return apperrors.Internal("Failed to update booking status", err)
	}

	s.publish(ctx, eventType, updated)
	s.cfg.Log.Info("Booking payment settled", "id", updated.ID, "status", updated.Status)
	return nil
}

func (s *bookingService) cancelIntent(ctx context.Context, intentID string) {
	if s.payments == nil {
		return
	}
	if err := s.payments.CancelIntent(context.WithoutCancel(ctx), intentID); err != nil {
		s.cfg.Log.Warn("Failed to cancel payment intent", "intent_id", intentID, "error", err)
	}
}

func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	if err := s.events.PublishBooking(ctx, model.NewBookingEvent(eventType, booking)); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event", "type", eventType, "id", booking.ID, "error", err)
	}
}

func (s *bookingService) findListing(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, listingserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Listing", id)
		case errors.Is(err, listingserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid listing ID format")
		default:
			return nil, apperrors.Internal("Failed to retrieve listing", err)
		}
	}
	return listing, nil
}

func (s *bookingService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Booking", id)
		case errors.Is(err, bookingserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		default:
			return nil, apperrors.Internal("Failed to retrieve booking", err)
		}
	}
	return booking, nil
}
