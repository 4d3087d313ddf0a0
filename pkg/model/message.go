package model

import "time"

type Message struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty"`
	SenderID   string    `json:"sender_id" bson:"sender_id"`
	ReceiverID string    `json:"receiver_id" bson:"receiver_id"`
	ListingID  string    `json:"listing_id,omitempty" bson:"listing_id,omitempty"`
	Text       string    `json:"text" bson:"text"`
	Read       bool      `json:"read" bson:"read"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// Counterpart returns the participant that is not userID.
func (m *Message) Counterpart(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required,mongodb"`
	Text       string `json:"text" validate:"required,min=1,max=2000"`
	ListingID  string `json:"listing_id,omitempty" validate:"omitempty,mongodb"`
}

type Conversation struct {
	CounterpartID string       `json:"counterpart_id"`
	User          *UserSummary `json:"user,omitempty"`
	LastMessage   string       `json:"last_message"`
	LastMessageAt time.Time    `json:"last_message_at"`
	ListingID     string       `json:"listing_id,omitempty"`
	SentByMe      bool         `json:"sent_by_me"`
}
