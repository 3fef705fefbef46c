// Package store provides persistence for users and conversations.
package store

import (
	"context"
	"errors"

	"github.com/cmdsage/linux-qa-platform/internal/model"
)

var (
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrDuplicateUsername is returned when the username is already taken.
	ErrDuplicateUsername = errors.New("username already taken")

	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrConversationNotFound is returned when no conversation matches the
	// (id, owner) pair. A mismatched owner is indistinguishable from a
	// missing id so existence never leaks across users.
	ErrConversationNotFound = errors.New("conversation not found")
)

// UserStore persists user accounts. Uniqueness of username and email is
// enforced by the store itself, not by callers, so concurrent
// registrations cannot race past an application-level pre-check.
type UserStore interface {
	CreateUser(ctx context.Context, user model.User) error
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByID(ctx context.Context, id string) (model.User, error)
}

// ConversationStore persists question/answer exchanges.
type ConversationStore interface {
	CreateConversation(ctx context.Context, conv model.Conversation) error

	// ListConversationsByUser returns up to limit conversations owned by
	// userID, most recent first.
	ListConversationsByUser(ctx context.Context, userID string, limit int) ([]model.Conversation, error)

	// DeleteConversation removes the conversation only when both id and
	// owner match an existing record.
	DeleteConversation(ctx context.Context, conversationID, userID string) error
}

// Store combines all persistence operations.
type Store interface {
	UserStore
	ConversationStore
}
