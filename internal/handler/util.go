package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cmdsage/linux-qa-platform/internal/llm"
	"github.com/cmdsage/linux-qa-platform/internal/service"
	"github.com/cmdsage/linux-qa-platform/internal/store"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeServiceError maps a service error onto the HTTP surface. Unknown
// errors collapse into a generic 500 without leaking internal detail.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, "email already registered")
	case errors.Is(err, store.ErrDuplicateUsername):
		writeError(w, http.StatusBadRequest, "username already taken")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, store.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, store.ErrConversationNotFound):
		writeError(w, http.StatusNotFound, "conversation not found")
	case errors.Is(err, llm.ErrEmptyCompletion):
		writeError(w, http.StatusInternalServerError, "the model produced no answer")
	case errors.Is(err, service.ErrOracleFailure), errors.Is(err, service.ErrNoOracle):
		writeError(w, http.StatusInternalServerError, "failed to generate an answer")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
