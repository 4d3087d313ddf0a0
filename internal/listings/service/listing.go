package service

import (
	"context"
	"errors"
	"sync"

	listingserrors "liora/internal/listings/errors"
	"liora/internal/listings/repository"
	listingvalidator "liora/internal/listings/validator"
	"liora/pkg/cache"
	"liora/pkg/config"
	apperrors "liora/pkg/errors"
	"liora/pkg/model"
	"liora/pkg/sanitizer"
	"liora/pkg/validator"
)

type ListingService interface {
	Create(ctx context.Context, hostID string, input *model.ListingInput) (*model.Listing, error)
	GetByID(ctx context.Context, id string) (*model.Listing, error)
	Search(ctx context.Context, filter model.ListingFilter) (*model.ListingPage, error)
	GetByHost(ctx context.Context, hostID string) ([]*model.Listing, error)
	Update(ctx context.Context, hostID, id string, upd *model.ListingUpdate) (*model.Listing, error)
	Delete(ctx context.Context, hostID, id string) error
}

type listingService struct {
	repo      repository.ListingRepository
	cache     cache.Cache
	validator *listingvalidator.ListingValidator
	cfg       *config.Config
}

func NewListingService(
	repo repository.ListingRepository,
	c cache.Cache,
	validator *listingvalidator.ListingValidator,
	cfg *config.Config,
) ListingService {
	if c == nil {
		c = cache.NewNoop()
	}
	return &listingService{
		repo:      repo,
		cache:     c,
		validator: validator,
		cfg:       cfg,
	}
}

func CacheKey(id string) string {
	return "listing:" + id
}

func (s *listingService) Create(ctx context.Context, hostID string, input *model.ListingInput) (*model.Listing, error) {
	s.sanitize(input)
	if err := s.validator.Validate(input); err != nil {
		s.cfg.Log.Warn("Listing validation failed", "host_id", hostID, "error", err)
		return nil, validator.ToAppError("Listing validation failed", err)
	}

	listing := &model.Listing{
		HostID:      hostID,
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Price:       input.Price,
		Type:        input.Type,
		Bedrooms:    input.Bedrooms,
		Bathrooms:   input.Bathrooms,
		MaxGuests:   input.MaxGuests,
		Images:      sanitizer.NormalizeImageURLs(input.Images),
		Amenities:   sanitizer.NormalizeAmenities(input.Amenities),
		Coordinates: input.Coordinates,
	}
	if listing.Type == "" {
		listing.Type = model.ListingTypeApartment
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		s.cfg.Log.Error("Failed to create listing", "host_id", hostID, "error", err)
		return nil, apperrors.Internal("Failed to create listing", err)
	}

	s.cfg.Log.Info("Listing created", "id", listing.ID, "host_id", hostID)
	return listing, nil
}

// GetByID reads through the cache. Cache failures degrade to a direct read.
func (s *listingService) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Listing ID cannot be empty")
	}

	var cached model.Listing
	err := s.cache.Get(ctx, CacheKey(id), &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.cfg.Log.Warn("Listing cache read failed", "id", id, "error", err)
	}

	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapListingError(err, id)
	}

	if err := s.cache.Set(ctx, CacheKey(id), listing, s.cfg.ListingCacheTTL); err != nil {
		s.cfg.Log.Warn("Listing cache write failed", "id", id, "error", err)
	}
	return listing, nil
}

func (s *listingService) Search(ctx context.Context, filter model.ListingFilter) (*model.ListingPage, error) {
	filter.Page = config.NormalizePage(filter.Page)
	filter.Limit = config.NormalizePaginationLimit(filter.Limit)
	filter.Location = sanitizer.TrimAndNormalize(filter.Location)

	var count int64
	var listings []*model.Listing
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count listings", "error", errCount)
			errCount = apperrors.Internal("Failed to count listings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		listings, errFind = s.repo.Search(ctx, filter)
		if errFind != nil {
			s.cfg.Log.Error("Failed to search listings", "page", filter.Page, "limit", filter.Limit, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve listings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, errCount
	}
	if errFind != nil {
		return nil, errFind
	}

	return model.NewListingPage(listings, filter.Page, filter.Limit, count), nil
}

func (s *listingService) GetByHost(ctx context.Context, hostID string) ([]*model.Listing, error) {
	listings, err := s.repo.FindByHost(ctx, hostID)
	if err != nil {
		s.cfg.Log.Error("Failed to list host listings", "host_id", hostID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve listings", err)
	}
	return listings, nil
}

func (s *listingService) Update(ctx context.Context, hostID, id string, upd *model.ListingUpdate) (*model.Listing, error) {
	existing, err := s.ownedListing(ctx, hostID, id)
	if err != nil {
		return nil, err
	}

	s.sanitizeUpdate(upd)
	if err := s.validator.ValidateUpdate(upd); err != nil {
		s.cfg.Log.Warn("Listing update validation failed", "id", id, "error", err)
		return nil, validator.ToAppError("Invalid update input", err)
	}

	merged := mergeListingUpdates(existing, upd)
	if err := s.repo.Update(ctx, merged); err != nil {
		return nil, mapListingError(err, id)
	}
	s.invalidate(ctx, id)

	s.cfg.Log.Info("Listing updated", "id", id)
	return merged, nil
}

func (s *listingService) Delete(ctx context.Context, hostID, id string) error {
	if _, err := s.ownedListing(ctx, hostID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapListingError(err, id)
	}
	s.invalidate(ctx, id)

	s.cfg.Log.Info("Listing deleted", "id", id)
	return nil
}

func (s *listingService) ownedListing(ctx context.Context, hostID, id string) (*model.Listing, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Listing ID cannot be empty")
	}
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapListingError(err, id)
	}
	if listing.HostID != hostID {
		s.cfg.Log.Warn("Listing mutation by non-owner rejected", "id", id, "user_id", hostID)
		return nil, apperrors.Forbidden("Not authorized to modify this listing")
	}
	return listing, nil
}

func (s *listingService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, CacheKey(id)); err != nil {
		s.cfg.Log.Warn("Listing cache invalidation failed", "id", id, "error", err)
	}
}

func (s *listingService) sanitize(input *model.ListingInput) {
	input.Title = sanitizer.TrimAndNormalize(input.Title)
	input.Description = sanitizer.NormalizeMultiline(input.Description)
	input.Location = sanitizer.TrimAndNormalize(input.Location)
	input.Type = sanitizer.NormalizeLabel(input.Type)
}

func (s *listingService) sanitizeUpdate(upd *model.ListingUpdate) {
	trim := func(p *string, fn sanitizer.Strategy) *string {
		if p == nil {
			return nil
		}
		v := fn(*p)
		return &v
	}
	upd.Title = trim(upd.Title, sanitizer.TrimAndNormalize)
	upd.Description = trim(upd.Description, sanitizer.NormalizeMultiline)
	upd.Location = trim(upd.Location, sanitizer.TrimAndNormalize)
	upd.Type = trim(upd.Type, sanitizer.NormalizeLabel)
}

// mergeListingUpdates applies the set fields of upd to a copy of existing.
// Nil slices and a nil coordinates pointer keep the stored values.
func mergeListingUpdates(existing *model.Listing, upd *model.ListingUpdate) *model.Listing {
	merged := *existing

	if upd.Title != nil {
		merged.Title = *upd.Title
	}
	if upd.Description != nil {
		merged.Description = *upd.Description
	}
	if upd.Location != nil {
		merged.Location = *upd.Location
	}
	if upd.Price != nil {
		merged.Price = *upd.Price
	}
	if upd.Type != nil {
		merged.Type = *upd.Type
	}
	if upd.Bedrooms != nil {
		merged.Bedrooms = *upd.Bedrooms
	}
	if upd.Bathrooms != nil {
		merged.Bathrooms = *upd.Bathrooms
	}
	if upd.MaxGuests != nil {
		merged.MaxGuests = *upd.MaxGuests
	}
	if upd.Images != nil {
		merged.Images = sanitizer.NormalizeImageURLs(upd.Images)
	}
	if upd.Amenities != nil {
		merged.Amenities = sanitizer.NormalizeAmenities(upd.Amenities)
	}
	if upd.Coordinates != nil {
		merged.Coordinates = upd.Coordinates
	}

	return &merged
}

func mapListingError(err error, id string) error {
	switch {
	case errors.Is(err, listingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Listing", id)
	case errors.Is(err, listingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid listing ID format")
	default:
		return apperrors.Internal("Failed to retrieve listing", err)
	}
}
