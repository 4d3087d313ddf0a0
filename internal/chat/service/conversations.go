package service

import "liora/pkg/model"

// AggregateConversations reduces a newest-first message history to one entry per counterpart,
// keeping the most recent exchange. The result is ordered by recency of last contact.
func AggregateConversations(userID string, newestFirst []*model.Message) []*model.Conversation {
	seen := make(map[string]struct{})
	conversations := make([]*model.Conversation, 0)

	for _, msg := range newestFirst {
		counterpart := msg.Counterpart(userID)
		if _, ok := seen[counterpart]; ok {
			continue
		}
		seen[counterpart] = struct{}{}

		conversations = append(conversations, &model.Conversation{
			CounterpartID: counterpart,
			LastMessage:   msg.Text,
			LastMessageAt: msg.CreatedAt,
			ListingID:     msg.ListingID,
			SentByMe:      msg.SenderID == userID,
		})
	}

	return conversations
}
