// Package model defines data structures for the Q&A platform.
package model

import (
	"time"
)

// Conversation is one persisted question/answer exchange owned by a user.
// Conversations are immutable after creation.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"timestamp"`
}

// AskRequest is the request to ask a question.
type AskRequest struct {
	Question string `json:"question"`
	UserID   string `json:"user_id"`
}

// AskResponse is the response after a question was answered.
type AskResponse struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversation_id"`
}

// ExchangeEvent is published to JetStream when an exchange is recorded.
type ExchangeEvent struct {
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Question       string    `json:"question"`
	RecordedAt     time.Time `json:"recorded_at"`
}
