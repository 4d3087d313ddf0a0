package service

import (
	"context"
	"errors"

	listingserrors "liora/internal/listings/errors"
	"liora/internal/reviews/repository"
	"liora/pkg/config"
	mongotx "liora/pkg/db/mongo"
	apperrors "liora/pkg/errors"
	"liora/pkg/model"
	"liora/pkg/sanitizer"
	"liora/pkg/validator"
)

type ReviewService interface {
	Create(ctx context.Context, authorID string, req *model.CreateReviewRequest) (*model.Review, error)
	GetByListing(ctx context.Context, listingID string) ([]*model.ReviewView, error)
}

type ListingReader interface {
	FindByID(ctx context.Context, id string) (*model.Listing, error)
}

type UserReader interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.User, error)
}

type reviewService struct {
	repo      repository.ReviewRepository
	listings  ListingReader
	users     UserReader
	validator *validator.Validator
	cfg       *config.Config
}

func NewReviewService(repo repository.ReviewRepository, listings ListingReader, users UserReader, cfg *config.Config) ReviewService {
	return &reviewService{
		repo:      repo,
		listings:  listings,
		users:     users,
		validator: validator.New(),
		cfg:       cfg,
	}
}

// Create stores a review on an existing listing. A repeat review by the same author is stored and
// logged as a warning.
func (s *reviewService) Create(ctx context.Context, authorID string, req *model.CreateReviewRequest) (*model.Review, error) {
	req.Comment = sanitizer.NormalizeMultiline(req.Comment)
	if err := s.validator.Struct(req); err != nil {
		return nil, validator.ToAppError("Review validation failed", err)
	}

	if _, err := s.listings.FindByID(ctx, req.ListingID); err != nil {
		switch {
		case errors.Is(err, listingserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Listing", req.ListingID)
		case errors.Is(err, listingserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid listing ID format")
		default:
			return nil, apperrors.Internal("Failed to retrieve listing", err)
		}
	}

	duplicate, err := s.repo.ExistsByAuthor(ctx, req.ListingID, authorID)
	if err != nil {
		s.cfg.Log.Warn("Duplicate review check failed", "listing_id", req.ListingID, "error", err)
	} else if duplicate {
		s.cfg.Log.Warn("Author already reviewed this listing", "listing_id", req.ListingID, "author_id", authorID)
	}

	review := &model.Review{
		ListingID: req.ListingID,
		AuthorID:  authorID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		s.cfg.Log.Error("Failed to create review", "listing_id", req.ListingID, "error", err)
		return nil, apperrors.Internal("Failed to create review", err)
	}

	s.cfg.Log.Info("Review created", "id", review.ID, "listing_id", review.ListingID, "rating", review.Rating)
	return review, nil
}

func (s *reviewService) GetByListing(ctx context.Context, listingID string) ([]*model.ReviewView, error) {
	if !mongotx.IsValidID(listingID) {
		return nil, apperrors.InvalidInput("Invalid listing ID format")
	}

	reviews, err := s.repo.FindByListing(ctx, listingID)
	if err != nil {
		s.cfg.Log.Error("Failed to list reviews", "listing_id", listingID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve reviews", err)
	}

	views := make([]*model.ReviewView, 0, len(reviews))
	if len(reviews) == 0 {
		return views, nil
	}

	authorIDs := make([]string, 0, len(reviews))
	for _, r := range reviews {
		authorIDs = append(authorIDs, r.AuthorID)
	}
	authors, err := s.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve review authors", err)
	}
	byID := make(map[string]*model.User, len(authors))
	for _, u := range authors {
		byID[u.ID] = u
	}

	for _, r := range reviews {
		view := &model.ReviewView{Review: r}
		if u, ok := byID[r.AuthorID]; ok {
			view.Author = u.Summary(false)
		}
		views = append(views, view)
	}
	return views, nil
}
