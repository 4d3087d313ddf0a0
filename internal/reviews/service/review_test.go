package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	listingserrors "liora/internal/listings/errors"
	"liora/pkg/config"
	apperrors "liora/pkg/errors"
	"liora/pkg/logger"
	"liora/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReviewRepository struct {
	reviews []*model.Review
	clock   time.Time
}

func (f *fakeReviewRepository) Create(_ context.Context, r *model.Review) error {
	f.clock = f.clock.Add(time.Minute)
	r.ID = fmt.Sprintf("65d0000000000000000000%02d", len(f.reviews)+1)
	r.CreatedAt = f.clock
	f.reviews = append(f.reviews, r)
	return nil
}

func (f *fakeReviewRepository) FindByListing(_ context.Context, listingID string) ([]*model.Review, error) {
	out := []*model.Review{}
	for i := len(f.reviews) - 1; i >= 0; i-- {
		if f.reviews[i].ListingID == listingID {
			out = append(out, f.reviews[i])
		}
	}
	return out, nil
}

func (f *fakeReviewRepository) ExistsByAuthor(_ context.Context, listingID, authorID string) (bool, error) {
	for _, r := range f.reviews {
		if r.ListingID == listingID && r.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

type fakeListings map[string]*model.Listing

func (f fakeListings) FindByID(_ context.Context, id string) (*model.Listing, error) {
	if l, ok := f[id]; ok {
		return l, nil
	}
	return nil, listingserrors.ErrNotFound
}

type fakeUsers map[string]*model.User

func (f fakeUsers) FindByIDs(_ context.Context, ids []string) ([]*model.User, error) {
	var out []*model.User
	for _, id := range ids {
		if u, ok := f[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

const (
	listingID = "65b000000000000000000001"
	authorA   = "65a000000000000000000001"
	authorB   = "65a000000000000000000002"
)

func newTestService() (ReviewService, *fakeReviewRepository) {
	repo := &fakeReviewRepository{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	listings := fakeListings{listingID: {ID: listingID}}
	users := fakeUsers{
		authorA: {ID: authorA, Name: "Ana", Email: "ana@example.com", Avatar: "/uploads/ana.png"},
		authorB: {ID: authorB, Name: "Ben", Email: "ben@example.com"},
	}
	cfg := &config.Config{Log: logger.Discard()}
	return NewReviewService(repo, listings, users, cfg), repo
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name     string
		req      model.CreateReviewRequest
		wantCode string
	}{
		{"valid", model.CreateReviewRequest{ListingID: listingID, Rating: 5, Comment: "Lovely"}, ""},
		{"rating too high", model.CreateReviewRequest{ListingID: listingID, Rating: 6, Comment: "x"}, apperrors.CodeValidation},
		{"rating zero", model.CreateReviewRequest{ListingID: listingID, Rating: 0, Comment: "x"}, apperrors.CodeValidation},
		{"blank comment", model.CreateReviewRequest{ListingID: listingID, Rating: 3, Comment: "   "}, apperrors.CodeValidation},
		{"unknown listing", model.CreateReviewRequest{ListingID: "65b0000000000000000000ff", Rating: 3, Comment: "ok"}, apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService()
			review, err := svc.Create(context.Background(), authorA, &tt.req)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
				assert.Empty(t, repo.reviews)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, authorA, review.AuthorID)
			assert.Len(t, repo.reviews, 1)
		})
	}
}

func TestCreate_DuplicateAllowed(t *testing.T) {
	svc, repo := newTestService()
	req := model.CreateReviewRequest{ListingID: listingID, Rating: 4, Comment: "Nice"}

	_, err := svc.Create(context.Background(), authorA, &req)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), authorA, &req)
	require.NoError(t, err)

	assert.Len(t, repo.reviews, 2)
}

func TestGetByListing_NewestFirstWithAuthors(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Create(context.Background(), authorA, &model.CreateReviewRequest{ListingID: listingID, Rating: 4, Comment: "first"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), authorB, &model.CreateReviewRequest{ListingID: listingID, Rating: 2, Comment: "second"})
	require.NoError(t, err)

	views, err := svc.GetByListing(context.Background(), listingID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "second", views[0].Comment)
	assert.Equal(t, "Ben", views[0].Author.Name)
	assert.Equal(t, "first", views[1].Comment)
	assert.Equal(t, "/uploads/ana.png", views[1].Author.Avatar)
	assert.Empty(t, views[1].Author.Email, "author email must not be exposed")
}

func TestGetByListing_InvalidID(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetByListing(context.Background(), "nope")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}
