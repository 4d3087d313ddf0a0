package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	listingserrors "liora/internal/listings/errors"
	userserrors "liora/internal/users/errors"
	uservalidator "liora/internal/users/validator"
	"liora/pkg/auth"
	"liora/pkg/config"
	apperrors "liora/pkg/errors"
	"liora/pkg/logger"
	"liora/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ────────────────────────────────────────────────
// In-memory fakes
// ────────────────────────────────────────────────

type fakeUserRepository struct {
	mu    sync.Mutex
	seq   int
	users map[string]*model.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*model.User)}
}

func (f *fakeUserRepository) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return userserrors.ErrDuplicateEmail
		}
	}
	f.seq++
	user.ID = fmt.Sprintf("65a0000000000000000000%02d", f.seq)
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, userserrors.ErrNotFound
	}
	cp := *u
	cp.Wishlist = append([]string{}, u.Wishlist...)
	return &cp, nil
}

func (f *fakeUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, userserrors.ErrNotFound
}

func (f *fakeUserRepository) FindByIDs(_ context.Context, ids []string) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepository) UpdateProfile(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return userserrors.ErrNotFound
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepository) AddToWishlist(_ context.Context, userID, listingID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, userserrors.ErrNotFound
	}
	if !u.InWishlist(listingID) {
		u.Wishlist = append(u.Wishlist, listingID)
	}
	return append([]string{}, u.Wishlist...), nil
}

func (f *fakeUserRepository) RemoveFromWishlist(_ context.Context, userID, listingID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, userserrors.ErrNotFound
	}
	kept := []string{}
	for _, id := range u.Wishlist {
		if id != listingID {
			kept = append(kept, id)
		}
	}
	u.Wishlist = kept
	return append([]string{}, kept...), nil
}

type fakeListingReader struct {
	listings map[string]*model.Listing
}

func (f *fakeListingReader) FindByID(_ context.Context, id string) (*model.Listing, error) {
	if l, ok := f.listings[id]; ok {
		return l, nil
	}
	return nil, listingserrors.ErrNotFound
}

func (f *fakeListingReader) FindByIDs(_ context.Context, ids []string) ([]*model.Listing, error) {
	var out []*model.Listing
	for _, id := range ids {
		if l, ok := f.listings[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

const (
	listingA = "65b000000000000000000001"
	listingB = "65b000000000000000000002"
)

func newTestService(t *testing.T) (UserService, *fakeUserRepository) {
	t.Helper()
	log := logger.Discard()
	cfg := &config.Config{Log: log, ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second}
	repo := newFakeUserRepository()
	listings := &fakeListingReader{listings: map[string]*model.Listing{
		listingA: {ID: listingA, Title: "Cabin", Price: 100},
		listingB: {ID: listingB, Title: "Loft", Price: 80},
	}}
	tokens := auth.NewTokenService("test-secret-at-least-16", time.Hour)
	return NewUserService(repo, listings, tokens, uservalidator.NewUserValidator(log), cfg), repo
}

func register(t *testing.T, svc UserService, email string) *model.AuthResult {
	t.Helper()
	res, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Ada Guest",
		Email:    email,
		Password: "secret1",
	})
	require.NoError(t, err)
	return res
}

// ────────────────────────────────────────────────
// Auth
// ────────────────────────────────────────────────

func TestRegister_DefaultsAndToken(t *testing.T) {
	svc, repo := newTestService(t)

	res := register(t, svc, "  Ada@Example.COM ")

	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.Equal(t, model.RoleGuest, res.User.Role)
	assert.NotEqual(t, "secret1", repo.users[res.User.ID].PasswordHash)
}

func TestRegister_DuplicateEmailConflict(t *testing.T) {
	svc, _ := newTestService(t)
	register(t, svc, "ada@example.com")

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Other",
		Email:    "ADA@example.com",
		Password: "secret2",
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "A",
		Email:    "not-an-email",
		Password: "123",
		Role:     "admin",
	})
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Details, "errors")
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	register(t, svc, "ada@example.com")

	tests := []struct {
		name     string
		email    string
		password string
		wantCode string
	}{
		{"valid credentials", "ada@example.com", "secret1", ""},
		{"case insensitive email", "ADA@example.com", "secret1", ""},
		{"wrong password", "ada@example.com", "wrong-pass", apperrors.CodeUnauthorized},
		{"unknown email", "bob@example.com", "secret1", apperrors.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Login(context.Background(), &model.LoginRequest{Email: tt.email, Password: tt.password})
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.NotEmpty(t, res.Token)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.wantCode))
		})
	}
}

// ────────────────────────────────────────────────
// Profile
// ────────────────────────────────────────────────

func TestUpdateProfile_EmailUniqueness(t *testing.T) {
	svc, _ := newTestService(t)
	ada := register(t, svc, "ada@example.com")
	register(t, svc, "bob@example.com")

	taken := "bob@example.com"
	_, err := svc.UpdateProfile(context.Background(), ada.User.ID, &model.ProfileUpdate{Email: &taken})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	name := "Ada Lovelace"
	fresh := "ada.l@example.com"
	avatar := "/uploads/ada.png"
	user, err := svc.UpdateProfile(context.Background(), ada.User.ID, &model.ProfileUpdate{
		Name:   &name,
		Email:  &fresh,
		Avatar: &avatar,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.Equal(t, "ada.l@example.com", user.Email)
	assert.Equal(t, "/uploads/ada.png", user.Avatar)
}

func TestUpdateProfile_RejectsScriptAvatar(t *testing.T) {
	svc, _ := newTestService(t)
	ada := register(t, svc, "ada@example.com")

	avatar := "javascript:alert(1)"
	_, err := svc.UpdateProfile(context.Background(), ada.User.ID, &model.ProfileUpdate{Avatar: &avatar})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestGetProfile_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetProfile(context.Background(), "65a0000000000000000000ff")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

// ────────────────────────────────────────────────
// Wishlist
// ────────────────────────────────────────────────

func TestToggleWishlist_TwiceRestoresMembership(t *testing.T) {
	svc, _ := newTestService(t)
	ada := register(t, svc, "ada@example.com")
	ctx := context.Background()

	wishlist, err := svc.ToggleWishlist(ctx, ada.User.ID, listingA)
	require.NoError(t, err)
	assert.Equal(t, []string{listingA}, wishlist)

	wishlist, err = svc.ToggleWishlist(ctx, ada.User.ID, listingA)
	require.NoError(t, err)
	assert.Empty(t, wishlist)
}

func TestToggleWishlist_AddRequiresListing(t *testing.T) {
	svc, _ := newTestService(t)
	ada := register(t, svc, "ada@example.com")

	_, err := svc.ToggleWishlist(context.Background(), ada.User.ID, "65b0000000000000000000ff")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestToggleWishlist_StaleIDCanBeRemoved(t *testing.T) {
	svc, repo := newTestService(t)
	ada := register(t, svc, "ada@example.com")
	stale := "65b0000000000000000000ee"
	repo.users[ada.User.ID].Wishlist = []string{stale, listingA}

	wishlist, err := svc.ToggleWishlist(context.Background(), ada.User.ID, stale)
	require.NoError(t, err)
	assert.Equal(t, []string{listingA}, wishlist)
}

func TestToggleWishlist_InvalidID(t *testing.T) {
	svc, _ := newTestService(t)
	ada := register(t, svc, "ada@example.com")

	_, err := svc.ToggleWishlist(context.Background(), ada.User.ID, "not-an-id")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestGetWishlist_HydratesInOrder(t *testing.T) {
	svc, repo := newTestService(t)
	ada := register(t, svc, "ada@example.com")
	repo.users[ada.User.ID].Wishlist = []string{listingB, "65b0000000000000000000ee", listingA}

	summaries, err := svc.GetWishlist(context.Background(), ada.User.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Loft", summaries[0].Title)
	assert.Equal(t, "Cabin", summaries[1].Title)
}
