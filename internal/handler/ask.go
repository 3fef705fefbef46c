// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cmdsage/linux-qa-platform/internal/middleware"
	"github.com/cmdsage/linux-qa-platform/internal/model"
	"github.com/cmdsage/linux-qa-platform/internal/service"
	"github.com/cmdsage/linux-qa-platform/pkg/logger"
)

// AskHandler handles the question answering endpoint.
type AskHandler struct {
	service *service.AnswerService
	logger  *logger.Logger
}

// NewAskHandler creates a new ask handler.
func NewAskHandler(svc *service.AnswerService, log *logger.Logger) *AskHandler {
	return &AskHandler{
		service: svc,
		logger:  log,
	}
}

// Ask handles POST /ask
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req model.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateQuestion(req.Question); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateUserID(req.UserID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.service.Ask(r.Context(), req.UserID, req.Question)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.AskResponse{
		Answer:         conv.Answer,
		ConversationID: conv.ID,
	})
}
