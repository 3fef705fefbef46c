package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LocalClient calls a self-hosted model server over HTTP. The server wraps
// the fine-tuned command model and echoes the prompt in its completion.
type LocalClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewLocalClient creates a client for the given model server base URL.
func NewLocalClient(baseURL string) (*LocalClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("model server URL is required")
	}
	return &LocalClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Name returns the provider name.
func (c *LocalClient) Name() string {
	return "local"
}

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type generateResponse struct {
	Completion string `json:"completion"`
}

// Complete sends a prompt to the model server's /generate endpoint.
func (c *LocalClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Prompt:      prompt,
		MaxLength:   MaxCompletionTokens,
		Temperature: Temperature,
		TopP:        TopP,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("model server request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("model server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}

	return genResp.Completion, nil
}
