package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/cmdsage/linux-qa-platform/internal/model"
)

// userRecord is the GORM model for the users table. Unique indexes on
// username and email make the storage layer the authority on uniqueness.
type userRecord struct {
	ID           string    `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (userRecord) TableName() string { return "users" }

// conversationRecord is the GORM model for the conversations table. The
// composite index serves the most-recent-first listing per user.
type conversationRecord struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"not null;index:idx_conversations_user_created,priority:1"`
	Question  string    `gorm:"type:text;not null"`
	Answer    string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_conversations_user_created,priority:2,sort:desc"`
}

func (conversationRecord) TableName() string { return "conversations" }

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&userRecord{}, &conversationRecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Ping verifies database connectivity.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// CreateUser inserts a new user. The unique constraints decide duplicate
// outcomes; pre-existing rows are re-checked only to pick the right error
// kind after a constraint violation.
func (s *GormStore) CreateUser(ctx context.Context, user model.User) error {
	record := userRecord{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	err := s.db.WithContext(ctx).Create(&record).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		var count int64
		if s.db.WithContext(ctx).Model(&userRecord{}).Where("email = ?", user.Email).Count(&count).Error == nil && count > 0 {
			return ErrDuplicateEmail
		}
		return ErrDuplicateUsername
	}
	return fmt.Errorf("create user: %w", err)
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var record userRecord
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return userFromRecord(record), nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(ctx context.Context, id string) (model.User, error) {
	var record userRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return userFromRecord(record), nil
}

// CreateConversation inserts a new exchange.
func (s *GormStore) CreateConversation(ctx context.Context, conv model.Conversation) error {
	record := conversationRecord{
		ID:        conv.ID,
		UserID:    conv.UserID,
		Question:  conv.Question,
		Answer:    conv.Answer,
		CreatedAt: conv.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	return nil
}

// ListConversationsByUser returns up to limit exchanges, most recent first.
func (s *GormStore) ListConversationsByUser(ctx context.Context, userID string, limit int) ([]model.Conversation, error) {
	var records []conversationRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	result := make([]model.Conversation, 0, len(records))
	for _, record := range records {
		result = append(result, model.Conversation{
			ID:        record.ID,
			UserID:    record.UserID,
			Question:  record.Question,
			Answer:    record.Answer,
			CreatedAt: record.CreatedAt,
		})
	}
	return result, nil
}

// DeleteConversation removes an exchange when both id and owner match.
func (s *GormStore) DeleteConversation(ctx context.Context, conversationID, userID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", conversationID, userID).
		Delete(&conversationRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete conversation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func userFromRecord(record userRecord) model.User {
	return model.User{
		ID:           record.ID,
		Username:     record.Username,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		CreatedAt:    record.CreatedAt,
	}
}
