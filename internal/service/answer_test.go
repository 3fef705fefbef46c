package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmdsage/linux-qa-platform/internal/llm"
	"github.com/cmdsage/linux-qa-platform/internal/model"
	"github.com/cmdsage/linux-qa-platform/internal/store"
	"github.com/cmdsage/linux-qa-platform/pkg/logger"
)

// fakeOracle echoes the prompt followed by a canned continuation, the
// same raw shape the self-hosted model server produces.
type fakeOracle struct {
	continuation string
	err          error
	calls        int
	lastPrompt   string
	sawDeadline  bool
}

func (f *fakeOracle) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	if _, ok := ctx.Deadline(); ok {
		f.sawDeadline = true
	}
	if f.err != nil {
		return "", f.err
	}
	return prompt + " " + f.continuation, nil
}

func (f *fakeOracle) Name() string { return "fake" }

func newAnswerFixture(t *testing.T, oracle llm.Client) (*AnswerService, model.User) {
	t.Helper()
	mem := store.NewMemoryStore()
	log := logger.NewNop()
	accounts := NewAccountService(mem, log)
	conversations := NewConversationService(mem, mem, nil, log)

	user, err := accounts.Register(context.Background(), "alice", "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return NewAnswerService(oracle, accounts, conversations, time.Minute, log), user
}

func TestAskAnswersAndRecords(t *testing.T) {
	ctx := context.Background()
	oracle := &fakeOracle{continuation: "Use the ls command.<|endoftext|>"}
	svc, user := newAnswerFixture(t, oracle)

	conv, err := svc.Ask(ctx, user.ID, "How do I list files?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if conv.Answer != "Use the ls command." {
		t.Fatalf("unexpected answer %q", conv.Answer)
	}
	if oracle.lastPrompt != "Linux Command Question: How do I list files?\n\nAnswer:" {
		t.Fatalf("unexpected prompt %q", oracle.lastPrompt)
	}
	if !oracle.sawDeadline {
		t.Fatalf("expected oracle call to carry a deadline")
	}

	convs, err := svc.conversations.ListByUser(ctx, user.ID, 100)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(convs) != 1 || convs[0].ID != conv.ID {
		t.Fatalf("expected the exchange to be recorded")
	}
}

func TestAskUnknownUserSkipsOracle(t *testing.T) {
	oracle := &fakeOracle{continuation: "whatever"}
	svc, _ := newAnswerFixture(t, oracle)

	_, err := svc.Ask(context.Background(), "no-such-user", "q")
	if !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if oracle.calls != 0 {
		t.Fatalf("oracle must not be called for unknown users")
	}
}

func TestAskOracleFailureIsNotRetriedOrRecorded(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("connection refused")}
	svc, user := newAnswerFixture(t, oracle)

	_, err := svc.Ask(context.Background(), user.ID, "q")
	if !errors.Is(err, ErrOracleFailure) {
		t.Fatalf("expected ErrOracleFailure, got %v", err)
	}
	if oracle.calls != 1 {
		t.Fatalf("expected exactly one oracle call, got %d", oracle.calls)
	}

	convs, err := svc.conversations.ListByUser(context.Background(), user.ID, 100)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(convs) != 0 {
		t.Fatalf("failed exchanges must not be recorded")
	}
}

func TestAskEmptyCompletion(t *testing.T) {
	// The oracle echoed the prompt and produced nothing after the marker.
	oracle := &fakeOracle{continuation: ""}
	svc, user := newAnswerFixture(t, oracle)

	_, err := svc.Ask(context.Background(), user.ID, "q")
	if !errors.Is(err, llm.ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestAskWithoutOracle(t *testing.T) {
	svc, user := newAnswerFixture(t, nil)

	if _, err := svc.Ask(context.Background(), user.ID, "q"); !errors.Is(err, ErrNoOracle) {
		t.Fatalf("expected ErrNoOracle, got %v", err)
	}
}
