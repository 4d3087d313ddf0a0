package model

import "time"

const (
	RoleGuest = "guest"
	RoleHost  = "host"
)

type User struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password"`
	Role         string    `json:"role" bson:"role"`
	Avatar       string    `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Wishlist     []string  `json:"wishlist" bson:"wishlist"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

func (u *User) Summary(withEmail bool) *UserSummary {
	s := &UserSummary{
		ID:     u.ID,
		Name:   u.Name,
		Avatar: u.Avatar,
	}
	if withEmail {
		s.Email = u.Email
	}
	return s
}

func (u *User) InWishlist(listingID string) bool {
	for _, id := range u.Wishlist {
		if id == listingID {
			return true
		}
	}
	return false
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=guest host"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileUpdate struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=2,max=80"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Avatar *string `json:"avatar,omitempty" validate:"omitempty,max=2048"`
}

type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type WishlistToggleRequest struct {
	ListingID string `json:"listing_id" validate:"required,mongodb"`
}
