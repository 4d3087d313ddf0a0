package service

import (
	"context"
	"errors"

	listingserrors "liora/internal/listings/errors"
	apperrors "liora/pkg/errors"
	"liora/pkg/model"
	"liora/pkg/validator"
)

// ToggleWishlist removes listingID when present and adds it otherwise.
// Only additions require the listing to exist, so stale ids can always be removed.
func (s *userService) ToggleWishlist(ctx context.Context, userID, listingID string) ([]string, error) {
	req := &model.WishlistToggleRequest{ListingID: listingID}
	if err := s.validator.ValidateWishlistToggle(req); err != nil {
		return nil, validator.ToAppError("Wishlist validation failed", err)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapUserError(err, userID)
	}

	if user.InWishlist(listingID) {
		wishlist, err := s.repo.RemoveFromWishlist(ctx, userID, listingID)
		if err != nil {
			return nil, mapUserError(err, userID)
		}
		s.cfg.Log.Debug("Listing removed from wishlist", "user_id", userID, "listing_id", listingID)
		return wishlist, nil
	}

	if _, err := s.listings.FindByID(ctx, listingID); err != nil {
		if errors.Is(err, listingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Listing", listingID)
		}
		if errors.Is(err, listingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid listing ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve listing", err)
	}

	wishlist, err := s.repo.AddToWishlist(ctx, userID, listingID)
	if err != nil {
		return nil, mapUserError(err, userID)
	}
	s.cfg.Log.Debug("Listing added to wishlist", "user_id", userID, "listing_id", listingID)
	return wishlist, nil
}

// GetWishlist returns listing summaries in wishlist order. Ids whose listing was deleted are skipped.
func (s *userService) GetWishlist(ctx context.Context, userID string) ([]*model.ListingSummary, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapUserError(err, userID)
	}

	summaries := make([]*model.ListingSummary, 0, len(user.Wishlist))
	if len(user.Wishlist) == 0 {
		return summaries, nil
	}

	listings, err := s.listings.FindByIDs(ctx, user.Wishlist)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve wishlist listings", err)
	}

	byID := make(map[string]*model.Listing, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
	}
	for _, id := range user.Wishlist {
		if l, ok := byID[id]; ok {
			summaries = append(summaries, l.Summary())
		}
	}
	return summaries, nil
}
