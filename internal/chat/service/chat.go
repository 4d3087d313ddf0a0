package service

import (
	"context"
	"errors"

	chaterrors "liora/internal/chat/errors"
	"liora/internal/chat/repository"
	userserrors "liora/internal/users/errors"
	"liora/pkg/config"
	mongotx "liora/pkg/db/mongo"
	apperrors "liora/pkg/errors"
	"liora/pkg/model"
	"liora/pkg/sanitizer"
	"liora/pkg/validator"
)

type ChatService interface {
	Send(ctx context.Context, senderID string, req *model.SendMessageRequest) (*model.Message, error)
	Conversations(ctx context.Context, userID string) ([]*model.Conversation, error)
	Thread(ctx context.Context, userID, otherID string) ([]*model.Message, error)
}

type UserReader interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.User, error)
}

// Notifier pushes a persisted message to the receiver's live connections.
type Notifier interface {
	Notify(ctx context.Context, msg *model.Message) error
}

type chatService struct {
	repo      repository.MessageRepository
	users     UserReader
	notifier  Notifier
	validator *validator.Validator
	cfg       *config.Config
}

func NewChatService(repo repository.MessageRepository, users UserReader, notifier Notifier, cfg *config.Config) ChatService {
	return &chatService{
		repo:      repo,
		users:     users,
		notifier:  notifier,
		validator: validator.New(),
		cfg:       cfg,
	}
}

func (s *chatService) Send(ctx context.Context, senderID string, req *model.SendMessageRequest) (*model.Message, error) {
	req.Text = sanitizer.NormalizeMultiline(req.Text)
	if err := s.validator.Struct(req); err != nil {
		return nil, validator.ToAppError("Message validation failed", err)
	}
	if req.ReceiverID == senderID {
		return nil, apperrors.InvalidInput("Cannot send a message to yourself")
	}

	if _, err := s.users.FindByID(ctx, req.ReceiverID); err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("User", req.ReceiverID)
		}
		return nil, apperrors.Internal("Failed to retrieve receiver", err)
	}

	msg := &model.Message{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		ListingID:  req.ListingID,
		Text:       req.Text,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to create message", "sender_id", senderID, "error", err)
		return nil, apperrors.Internal("Failed to send message", err)
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, msg); err != nil {
			s.cfg.Log.Warn("Failed to push message", "id", msg.ID, "receiver_id", msg.ReceiverID, "error", err)
		}
	}

	s.cfg.Log.Debug("Message sent", "id", msg.ID, "sender_id", senderID, "receiver_id", msg.ReceiverID)
	return msg, nil
}

func (s *chatService) Conversations(ctx context.Context, userID string) ([]*model.Conversation, error) {
	messages, err := s.repo.FindByParticipant(ctx, userID, int64(s.cfg.ConversationScanLimit))
	if err != nil {
		s.cfg.Log.Error("Failed to load messages", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve conversations", err)
	}

	conversations := AggregateConversations(userID, messages)
	if len(conversations) == 0 {
		return conversations, nil
	}

	ids := make([]string, 0, len(conversations))
	for _, c := range conversations {
		ids = append(ids, c.CounterpartID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve conversation users", err)
	}
	byID := make(map[string]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, c := range conversations {
		if u, ok := byID[c.CounterpartID]; ok {
			c.User = u.Summary(false)
		}
	}

	return conversations, nil
}

// Thread returns the full exchange with otherID, oldest first, and marks what the caller received as read.
func (s *chatService) Thread(ctx context.Context, userID, otherID string) ([]*model.Message, error) {
	if !mongotx.IsValidID(otherID) {
		return nil, apperrors.InvalidInput(chaterrors.ErrInvalidID.Error())
	}

	messages, err := s.repo.FindThread(ctx, userID, otherID)
	if err != nil {
		s.cfg.Log.Error("Failed to load thread", "user_id", userID, "other_id", otherID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve messages", err)
	}

	unread := false
	for _, m := range messages {
		if m.ReceiverID == userID && !m.Read {
			m.Read = true
			unread = true
		}
	}
	if unread {
		if _, err := s.repo.MarkRead(ctx, userID, otherID); err != nil {
			s.cfg.Log.Warn("Failed to mark messages read", "user_id", userID, "other_id", otherID, "error", err)
		}
	}

	return messages, nil
}
