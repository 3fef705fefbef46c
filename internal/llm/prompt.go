package llm

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// answerDelimiter is the literal the prompt concludes with. The
	// extractor returns everything after its first occurrence in the
	// raw completion.
	answerDelimiter = "Answer:"

	// endOfTextToken is the model's end-of-sequence sentinel. Any
	// completion text is truncated at its first occurrence.
	endOfTextToken = "<|endoftext|>"
)

// ErrEmptyCompletion is returned when the oracle produced no answer text
// beyond the prompt itself.
var ErrEmptyCompletion = errors.New("completion contains no answer text")

// BuildPrompt wraps a question in the framing the command model was
// fine-tuned on.
func BuildPrompt(question string) string {
	return fmt.Sprintf("Linux Command Question: %s\n\nAnswer:", strings.TrimSpace(question))
}

// ExtractAnswer turns a raw completion into a clean answer string. The
// completion of an echoing provider contains the original prompt followed
// by the continuation; non-echoing providers return the continuation
// alone, in which case the whole completion is the candidate answer.
func ExtractAnswer(completion string) (string, error) {
	answer := completion
	if idx := strings.Index(completion, answerDelimiter); idx >= 0 {
		answer = completion[idx+len(answerDelimiter):]
	}
	if idx := strings.Index(answer, endOfTextToken); idx >= 0 {
		answer = answer[:idx]
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", ErrEmptyCompletion
	}
	return answer, nil
}
