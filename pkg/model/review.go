package model

import "time"

type Review struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	ListingID string    `json:"listing_id" bson:"listing_id"`
	AuthorID  string    `json:"author_id" bson:"author_id"`
	Rating    int       `json:"rating" bson:"rating"`
	Comment   string    `json:"comment" bson:"comment"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type CreateReviewRequest struct {
	ListingID string `json:"listing_id" validate:"required,mongodb"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"required,min=1,max=2000"`
}
