// Package service provides business logic for the Q&A platform.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cmdsage/linux-qa-platform/internal/model"
	"github.com/cmdsage/linux-qa-platform/internal/store"
	"github.com/cmdsage/linux-qa-platform/pkg/auth"
	"github.com/cmdsage/linux-qa-platform/pkg/logger"
	"github.com/cmdsage/linux-qa-platform/pkg/metrics"
)

// ErrInvalidCredentials is returned for both unknown email and wrong
// password. The two cases are never distinguished so the endpoint cannot
// be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AccountService handles user registration and credential verification.
type AccountService struct {
	users  store.UserStore
	logger *logger.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(users store.UserStore, log *logger.Logger) *AccountService {
	return &AccountService{
		users:  users,
		logger: log,
	}
}

// Register creates a new user. The password is digested before storage;
// the cleartext is never persisted or logged.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (model.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return model.User{}, err
	}

	metrics.UsersRegisteredTotal.Inc()
	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return user, nil
}

// Authenticate verifies credentials and returns the matching user.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return model.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// GetByID returns a user by ID.
func (s *AccountService) GetByID(ctx context.Context, id string) (model.User, error) {
	return s.users.GetUserByID(ctx, id)
}
