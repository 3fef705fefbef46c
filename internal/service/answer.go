package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cmdsage/linux-qa-platform/internal/llm"
	"github.com/cmdsage/linux-qa-platform/internal/model"
	"github.com/cmdsage/linux-qa-platform/pkg/logger"
	"github.com/cmdsage/linux-qa-platform/pkg/metrics"
)

var (
	// ErrOracleFailure wraps any error from the completion oracle. The
	// call is never retried here.
	ErrOracleFailure = errors.New("completion oracle failure")

	// ErrNoOracle is returned when the service was started without any
	// configured oracle provider.
	ErrNoOracle = errors.New("no completion oracle configured")
)

// AnswerService runs the request-to-answer pipeline: verify the user,
// build the prompt, call the oracle, extract the answer, and record the
// exchange. The oracle is injected at construction and read-only after.
type AnswerService struct {
	oracle        llm.Client
	accounts      *AccountService
	conversations *ConversationService
	oracleTimeout time.Duration
	logger        *logger.Logger
}

// NewAnswerService creates a new answer service.
func NewAnswerService(
	oracle llm.Client,
	accounts *AccountService,
	conversations *ConversationService,
	oracleTimeout time.Duration,
	log *logger.Logger,
) *AnswerService {
	return &AnswerService{
		oracle:        oracle,
		accounts:      accounts,
		conversations: conversations,
		oracleTimeout: oracleTimeout,
		logger:        log,
	}
}

// Ask answers a question for userID and records the exchange.
func (s *AnswerService) Ask(ctx context.Context, userID, question string) (model.Conversation, error) {
	if s.oracle == nil {
		return model.Conversation{}, ErrNoOracle
	}

	// The owner must exist before the (potentially slow) oracle call.
	if _, err := s.accounts.GetByID(ctx, userID); err != nil {
		return model.Conversation{}, err
	}

	prompt := llm.BuildPrompt(question)

	oracleCtx, cancel := context.WithTimeout(ctx, s.oracleTimeout)
	defer cancel()

	start := time.Now()
	completion, err := s.oracle.Complete(oracleCtx, prompt)
	elapsed := time.Since(start)
	if err != nil {
		metrics.RecordOracleCall(s.oracle.Name(), "error", elapsed.Seconds())
		s.logger.Error("oracle completion failed",
			zap.String("provider", s.oracle.Name()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return model.Conversation{}, fmt.Errorf("%w: %v", ErrOracleFailure, err)
	}
	metrics.RecordOracleCall(s.oracle.Name(), "ok", elapsed.Seconds())

	answer, err := llm.ExtractAnswer(completion)
	if err != nil {
		return model.Conversation{}, err
	}

	return s.conversations.Record(ctx, userID, question, answer)
}
