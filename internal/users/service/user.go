package service

import (
	"context"
	"errors"

	userserrors "liora/internal/users/errors"
	"liora/internal/users/repository"
	uservalidator "liora/internal/users/validator"
	"liora/pkg/auth"
	"liora/pkg/config"
	apperrors "liora/pkg/errors"
	"liora/pkg/model"
	"liora/pkg/sanitizer"
	"liora/pkg/validator"
)

type UserService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResult, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResult, error)
	GetProfile(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, upd *model.ProfileUpdate) (*model.User, error)
	ToggleWishlist(ctx context.Context, userID, listingID string) ([]string, error)
	GetWishlist(ctx context.Context, userID string) ([]*model.ListingSummary, error)
}

// ListingReader is the slice of the listings store the wishlist needs.
type ListingReader interface {
	FindByID(ctx context.Context, id string) (*model.Listing, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Listing, error)
}

type userService struct {
	repo      repository.UserRepository
	listings  ListingReader
	tokens    *auth.TokenService
	validator *uservalidator.UserValidator
	cfg       *config.Config
}

func NewUserService(
	repo repository.UserRepository,
	listings ListingReader,
	tokens *auth.TokenService,
	validator *uservalidator.UserValidator,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:      repo,
		listings:  listings,
		tokens:    tokens,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResult, error) {
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := s.validator.ValidateRegister(req); err != nil {
		return nil, validator.ToAppError("Registration validation failed", err)
	}

	role := req.Role
	if role == "" {
		role = model.RoleGuest
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Internal("Failed to secure password", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		Wishlist:     []string{},
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("User already exists")
		}
		s.cfg.Log.Error("Failed to create user", "email", user.Email, "error", err)
		return nil, apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User registered", "id", user.ID, "role", user.Role)
	return s.issue(user)
}

func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResult, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, validator.ToAppError("Login validation failed", err)
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid email or password")
		}
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}

	if err := auth.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		s.cfg.Log.Debug("Login rejected", "user_id", user.ID)
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	return s.issue(user)
}

func (s *userService) issue(user *model.User) (*model.AuthResult, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}
	return &model.AuthResult{Token: token, User: user}, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapUserError(err, userID)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, upd *model.ProfileUpdate) (*model.User, error) {
	if upd.Name != nil {
		name := sanitizer.NormalizeName(*upd.Name)
		upd.Name = &name
	}
	if upd.Email != nil {
		email := sanitizer.NormalizeEmail(*upd.Email)
		upd.Email = &email
	}
	if err := s.validator.ValidateProfileUpdate(upd); err != nil {
		return nil, validator.ToAppError("Profile validation failed", err)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapUserError(err, userID)
	}

	if upd.Email != nil && *upd.Email != user.Email {
		existing, err := s.repo.FindByEmail(ctx, *upd.Email)
		if err != nil && !errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.Internal("Failed to check email availability", err)
		}
		if existing != nil && existing.ID != user.ID {
			return nil, apperrors.Conflict("Email already in use")
		}
		user.Email = *upd.Email
	}
	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Avatar != nil {
		user.Avatar = sanitizer.NormalizeImageURL(*upd.Avatar)
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("Email already in use")
		}
		return nil, mapUserError(err, userID)
	}

	s.cfg.Log.Info("Profile updated", "id", user.ID)
	return user, nil
}

func mapUserError(err error, id string) error {
	switch {
	case errors.Is(err, userserrors.ErrNotFound):
		return apperrors.NotFoundWithID("User", id)
	case errors.Is(err, userserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid user ID format")
	default:
		return apperrors.Internal("Failed to retrieve user", err)
	}
}
