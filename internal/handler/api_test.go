package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cmdsage/linux-qa-platform/internal/llm"
	"github.com/cmdsage/linux-qa-platform/internal/service"
	"github.com/cmdsage/linux-qa-platform/internal/store"
	"github.com/cmdsage/linux-qa-platform/pkg/logger"
)

// echoOracle mimics the self-hosted model server: the raw completion is
// the prompt followed by a continuation and the end-of-sequence token.
type echoOracle struct {
	continuation string
	err          error
}

func (o *echoOracle) Complete(ctx context.Context, prompt string) (string, error) {
	if o.err != nil {
		return "", o.err
	}
	return prompt + " " + o.continuation + "<|endoftext|>", nil
}

func (o *echoOracle) Name() string { return "echo" }

func newTestServer(t *testing.T, oracle llm.Client) *httptest.Server {
	t.Helper()

	log := logger.NewNop()
	mem := store.NewMemoryStore()
	accountSvc := service.NewAccountService(mem, log)
	conversationSvc := service.NewConversationService(mem, mem, nil, log)
	answerSvc := service.NewAnswerService(oracle, accountSvc, conversationSvc, time.Minute, log)

	healthHandler := NewHealthHandler(nil, nil)
	accountHandler := NewAccountHandler(accountSvc, log)
	conversationHandler := NewConversationHandler(conversationSvc, log)
	askHandler := NewAskHandler(answerSvc, log)

	r := chi.NewRouter()
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Post("/register", accountHandler.Register)
	r.Post("/login", accountHandler.Login)
	r.Get("/user/{user_id}", accountHandler.Get)
	r.Post("/ask", askHandler.Ask)
	r.Get("/conversations/{user_id}", conversationHandler.List)
	r.Delete("/conversations/{conversation_id}/{user_id}", conversationHandler.Delete)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}, out interface{}) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func registerUser(t *testing.T, srv *httptest.Server, username, email, password string) string {
	t.Helper()
	var resp map[string]string
	status := doJSON(t, http.MethodPost, srv.URL+"/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &resp)
	if status != http.StatusCreated {
		t.Fatalf("register returned %d: %v", status, resp)
	}
	if resp["user_id"] == "" {
		t.Fatalf("register returned no user_id")
	}
	return resp["user_id"]
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &echoOracle{continuation: "ok"})

	var resp map[string]string
	if status := doJSON(t, http.MethodGet, srv.URL+"/health", nil, &resp); status != http.StatusOK {
		t.Fatalf("health returned %d", status)
	}
	if resp["status"] != "healthy" {
		t.Fatalf("unexpected health body %v", resp)
	}
}

func TestRegisterDuplicateStatus(t *testing.T) {
	srv := newTestServer(t, &echoOracle{})
	registerUser(t, srv, "alice", "a@x.com", "password1")

	var resp map[string]string
	status := doJSON(t, http.MethodPost, srv.URL+"/register", map[string]string{
		"username": "bob",
		"email":    "a@x.com",
		"password": "password2",
	}, &resp)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", status)
	}

	status = doJSON(t, http.MethodPost, srv.URL+"/register", map[string]string{
		"username": "alice",
		"email":    "b@x.com",
		"password": "password2",
	}, &resp)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate username, got %d", status)
	}
}

func TestLoginStatuses(t *testing.T) {
	srv := newTestServer(t, &echoOracle{})
	userID := registerUser(t, srv, "alice", "a@x.com", "password1")

	var ok map[string]string
	status := doJSON(t, http.MethodPost, srv.URL+"/login", map[string]string{
		"email":    "a@x.com",
		"password": "password1",
	}, &ok)
	if status != http.StatusOK {
		t.Fatalf("expected 200 login, got %d", status)
	}
	if ok["user_id"] != userID || ok["username"] != "alice" {
		t.Fatalf("unexpected login body %v", ok)
	}

	var bad map[string]string
	wrongStatus := doJSON(t, http.MethodPost, srv.URL+"/login", map[string]string{
		"email":    "a@x.com",
		"password": "wrong",
	}, &bad)
	var missingBody map[string]string
	missingStatus := doJSON(t, http.MethodPost, srv.URL+"/login", map[string]string{
		"email":    "nobody@x.com",
		"password": "password1",
	}, &missingBody)
	if wrongStatus != http.StatusUnauthorized || missingStatus != http.StatusUnauthorized {
		t.Fatalf("expected 401 for both failures, got %d and %d", wrongStatus, missingStatus)
	}
	if bad["error"] != missingBody["error"] {
		t.Fatalf("login failures must be indistinguishable: %q vs %q", bad["error"], missingBody["error"])
	}
}

func TestGetUser(t *testing.T) {
	srv := newTestServer(t, &echoOracle{})
	userID := registerUser(t, srv, "alice", "a@x.com", "password1")

	var user map[string]interface{}
	if status := doJSON(t, http.MethodGet, srv.URL+"/user/"+userID, nil, &user); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if user["username"] != "alice" || user["email"] != "a@x.com" {
		t.Fatalf("unexpected user body %v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password digest must not be serialized")
	}

	var errBody map[string]string
	unknown := "018f0000-0000-7000-8000-000000000000"
	if status := doJSON(t, http.MethodGet, srv.URL+"/user/"+unknown, nil, &errBody); status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", status)
	}
}

func TestAskUnknownUser(t *testing.T) {
	srv := newTestServer(t, &echoOracle{continuation: "Use ls."})

	var resp map[string]string
	status := doJSON(t, http.MethodPost, srv.URL+"/ask", map[string]string{
		"question": "How do I list files?",
		"user_id":  "018f0000-0000-7000-8000-000000000000",
	}, &resp)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestAskOracleFailure(t *testing.T) {
	srv := newTestServer(t, &echoOracle{err: errors.New("model server down")})
	userID := registerUser(t, srv, "alice", "a@x.com", "password1")

	var resp map[string]string
	status := doJSON(t, http.MethodPost, srv.URL+"/ask", map[string]string{
		"question": "How do I list files?",
		"user_id":  userID,
	}, &resp)
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500 on oracle failure, got %d", status)
	}
	if resp["error"] == "" {
		t.Fatalf("expected an error message")
	}
}

func TestAskValidation(t *testing.T) {
	srv := newTestServer(t, &echoOracle{continuation: "Use ls."})
	userID := registerUser(t, srv, "alice", "a@x.com", "password1")

	var resp map[string]string
	status := doJSON(t, http.MethodPost, srv.URL+"/ask", map[string]string{
		"question": "   ",
		"user_id":  userID,
	}, &resp)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank question, got %d", status)
	}

	status = doJSON(t, http.MethodPost, srv.URL+"/ask", map[string]string{
		"question": "How do I list files?",
		"user_id":  "not-a-uuid",
	}, &resp)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed user id, got %d", status)
	}
}

func TestListConversationsUnknownUser(t *testing.T) {
	srv := newTestServer(t, &echoOracle{})

	var resp map[string]string
	unknown := "018f0000-0000-7000-8000-000000000000"
	if status := doJSON(t, http.MethodGet, srv.URL+"/conversations/"+unknown, nil, &resp); status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

// Full scenario: register, ask, list, delete, list again.
func TestAskLifecycle(t *testing.T) {
	srv := newTestServer(t, &echoOracle{continuation: "Use the ls command."})
	userID := registerUser(t, srv, "alice", "a@x.com", "pw1pw1pw1")

	var askResp map[string]string
	status := doJSON(t, http.MethodPost, srv.URL+"/ask", map[string]string{
		"question": "How do I list files?",
		"user_id":  userID,
	}, &askResp)
	if status != http.StatusOK {
		t.Fatalf("ask returned %d: %v", status, askResp)
	}
	if askResp["answer"] != "Use the ls command." {
		t.Fatalf("unexpected answer %q", askResp["answer"])
	}
	convID := askResp["conversation_id"]
	if convID == "" {
		t.Fatalf("ask returned no conversation_id")
	}

	var convs []map[string]interface{}
	if status := doJSON(t, http.MethodGet, srv.URL+"/conversations/"+userID, nil, &convs); status != http.StatusOK {
		t.Fatalf("list returned %d", status)
	}
	if len(convs) != 1 {
		t.Fatalf("expected exactly one conversation, got %d", len(convs))
	}
	if convs[0]["question"] != "How do I list files?" || convs[0]["id"] != convID {
		t.Fatalf("unexpected conversation %v", convs[0])
	}

	var delResp map[string]string
	url := fmt.Sprintf("%s/conversations/%s/%s", srv.URL, convID, userID)
	if status := doJSON(t, http.MethodDelete, url, nil, &delResp); status != http.StatusOK {
		t.Fatalf("delete returned %d: %v", status, delResp)
	}

	convs = nil
	if status := doJSON(t, http.MethodGet, srv.URL+"/conversations/"+userID, nil, &convs); status != http.StatusOK {
		t.Fatalf("list returned %d", status)
	}
	if len(convs) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(convs))
	}
}

func TestDeleteConversationForeignOwner(t *testing.T) {
	srv := newTestServer(t, &echoOracle{continuation: "Use ls."})
	alice := registerUser(t, srv, "alice", "a@x.com", "password1")
	bob := registerUser(t, srv, "bob", "b@x.com", "password2")

	var askResp map[string]string
	status := doJSON(t, http.MethodPost, srv.URL+"/ask", map[string]string{
		"question": "How do I list files?",
		"user_id":  alice,
	}, &askResp)
	if status != http.StatusOK {
		t.Fatalf("ask returned %d", status)
	}
	convID := askResp["conversation_id"]

	var foreign map[string]string
	foreignStatus := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/conversations/%s/%s", srv.URL, convID, bob), nil, &foreign)

	var missing map[string]string
	missingID := "018f0000-0000-7000-8000-000000000000"
	missingStatus := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/conversations/%s/%s", srv.URL, missingID, alice), nil, &missing)

	if foreignStatus != http.StatusNotFound || missingStatus != http.StatusNotFound {
		t.Fatalf("expected 404 for both, got %d and %d", foreignStatus, missingStatus)
	}
	if foreign["error"] != missing["error"] {
		t.Fatalf("foreign-owner delete must be indistinguishable from missing id: %q vs %q", foreign["error"], missing["error"])
	}
}
