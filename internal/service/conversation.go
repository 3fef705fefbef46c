package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cmdsage/linux-qa-platform/internal/model"
	"github.com/cmdsage/linux-qa-platform/internal/store"
	"github.com/cmdsage/linux-qa-platform/pkg/logger"
	"github.com/cmdsage/linux-qa-platform/pkg/metrics"
)

// MaxListLimit bounds how many exchanges a single listing returns.
const MaxListLimit = 100

// ExchangePublisher publishes recorded exchanges to downstream consumers.
type ExchangePublisher interface {
	PublishExchange(ctx context.Context, event *model.ExchangeEvent) (uint64, error)
}

// ConversationService handles recorded question/answer exchanges.
type ConversationService struct {
	users         store.UserStore
	conversations store.ConversationStore
	publisher     ExchangePublisher
	logger        *logger.Logger
}

// NewConversationService creates a new conversation service. The
// publisher may be nil, in which case event publishing is disabled.
func NewConversationService(users store.UserStore, conversations store.ConversationStore, publisher ExchangePublisher, log *logger.Logger) *ConversationService {
	return &ConversationService{
		users:         users,
		conversations: conversations,
		publisher:     publisher,
		logger:        log,
	}
}

// Record persists one answered exchange owned by userID.
func (s *ConversationService) Record(ctx context.Context, userID, question, answer string) (model.Conversation, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return model.Conversation{}, err
	}

	conv := model.Conversation{
		ID:        uuid.Must(uuid.NewV7()).String(),
		UserID:    userID,
		Question:  question,
		Answer:    answer,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.conversations.CreateConversation(ctx, conv); err != nil {
		return model.Conversation{}, err
	}

	metrics.ConversationsRecordedTotal.Inc()
	s.publishExchange(ctx, conv)

	return conv, nil
}

// ListByUser returns up to limit exchanges owned by userID, most recent
// first. A user with no exchanges gets an empty slice, not an error.
func (s *ConversationService) ListByUser(ctx context.Context, userID string, limit int) ([]model.Conversation, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}

	convs, err := s.conversations.ListConversationsByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if convs == nil {
		convs = []model.Conversation{}
	}
	return convs, nil
}

// Delete removes an exchange when both id and owner match.
func (s *ConversationService) Delete(ctx context.Context, conversationID, userID string) error {
	if err := s.conversations.DeleteConversation(ctx, conversationID, userID); err != nil {
		return err
	}

	metrics.ConversationsDeletedTotal.Inc()
	s.logger.Info("conversation deleted",
		zap.String("conversation_id", conversationID),
		zap.String("user_id", userID),
	)
	return nil
}

// publishExchange is best-effort: a publish failure is logged and never
// fails the request that recorded the exchange.
func (s *ConversationService) publishExchange(ctx context.Context, conv model.Conversation) {
	if s.publisher == nil {
		return
	}

	event := &model.ExchangeEvent{
		ConversationID: conv.ID,
		UserID:         conv.UserID,
		Question:       conv.Question,
		RecordedAt:     conv.CreatedAt,
	}
	if _, err := s.publisher.PublishExchange(ctx, event); err != nil {
		metrics.ExchangeEventsPublished.WithLabelValues("error").Inc()
		s.logger.Warn("failed to publish exchange event",
			zap.String("conversation_id", conv.ID),
			zap.Error(err),
		)
		return
	}
	metrics.ExchangeEventsPublished.WithLabelValues("ok").Inc()
}
