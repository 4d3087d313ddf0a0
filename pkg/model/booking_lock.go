package model

import "time"

// BookingLock is the per-listing mutual-exclusion token held while a booking is checked and inserted.
// The _id is derived from the listing id, so a second insert fails with a duplicate key error.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func BookingLockID(listingID string) string {
	return "listing:" + listingID
}
