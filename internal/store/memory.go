package store

import (
	"context"
	"sort"
	"sync"

	"github.com/cmdsage/linux-qa-platform/internal/model"
)

// MemoryStore keeps all records in-process. It backs local development
// when no database is configured, and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]model.User // key: user ID
	emails    map[string]string     // email -> user ID
	usernames map[string]string     // username -> user ID

	conversations map[string]model.Conversation // key: conversation ID
	byUser        map[string][]string           // user ID -> conversation IDs in creation order
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]model.User),
		emails:        make(map[string]string),
		usernames:     make(map[string]string),
		conversations: make(map[string]model.Conversation),
		byUser:        make(map[string][]string),
	}
}

// CreateUser stores a new user. Both uniqueness checks and the insert
// happen under one lock, so concurrent registrations cannot interleave.
func (m *MemoryStore) CreateUser(ctx context.Context, user model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.emails[user.Email]; exists {
		return ErrDuplicateEmail
	}
	if _, exists := m.usernames[user.Username]; exists {
		return ErrDuplicateUsername
	}

	m.users[user.ID] = user
	m.emails[user.Email] = user.ID
	m.usernames[user.Username] = user.ID
	return nil
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.emails[email]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return m.users[id], nil
}

// GetUserByID returns a user by ID.
func (m *MemoryStore) GetUserByID(ctx context.Context, id string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return user, nil
}

// CreateConversation stores a new exchange.
func (m *MemoryStore) CreateConversation(ctx context.Context, conv model.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.conversations[conv.ID] = conv
	m.byUser[conv.UserID] = append(m.byUser[conv.UserID], conv.ID)
	return nil
}

// ListConversationsByUser returns up to limit exchanges, most recent first.
// Ordering follows CreatedAt, not insertion order, so concurrent writers
// whose timestamps land out of insertion order still list correctly.
func (m *MemoryStore) ListConversationsByUser(ctx context.Context, userID string, limit int) ([]model.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.byUser[userID]
	all := make([]model.Conversation, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if conv, ok := m.conversations[ids[i]]; ok {
			all = append(all, conv)
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// DeleteConversation removes an exchange when both id and owner match.
func (m *MemoryStore) DeleteConversation(ctx context.Context, conversationID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.conversations[conversationID]
	if !ok || conv.UserID != userID {
		return ErrConversationNotFound
	}

	delete(m.conversations, conversationID)
	ids := m.byUser[userID]
	for i, id := range ids {
		if id == conversationID {
			m.byUser[userID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}
