// Package llm provides completion oracle clients and answer extraction.
package llm

import (
	"context"
)

// Generation parameters shared by all providers, matching the serving
// defaults of the fine-tuned command model.
const (
	MaxCompletionTokens = 300
	Temperature         = 0.7
	TopP                = 0.9
)

// Client is the interface for completion oracle providers. Given a fully
// formatted prompt it returns the raw completion text. Depending on the
// provider the completion may or may not echo the prompt; ExtractAnswer
// handles both shapes.
type Client interface {
	// Complete sends a prompt and returns the raw completion.
	Complete(ctx context.Context, prompt string) (string, error)

	// Name returns the provider name.
	Name() string
}
