// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/goclaw/anima/pkg/agent"
	"github.com/goclaw/anima/pkg/api/middleware"
	"github.com/goclaw/anima/pkg/api/response"
	"github.com/goclaw/anima/pkg/logger"
)

// ChatRequest is the POST /api/v1/chat body.
type ChatRequest struct {
	Text      string `json:"text" validate:"required"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// ChatHandler handles conversation turn endpoints.
type ChatHandler struct {
	agent     *agent.Agent
	logger    logger.Logger
	validator *validator.Validate
}

// NewChatHandler creates a chat handler.
func NewChatHandler(a *agent.Agent, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		agent:     a,
		logger:    log,
		validator: validator.New(),
	}
}

// Chat handles POST /api/v1/chat
// @Summary Send a chat message
// @Description Run one conversation turn through the agent pipeline
// @Tags chat
// @Accept json
// @Produce json
// @Param message body ChatRequest true "User message"
// @Success 200 {object} agent.TurnResult "Agent response"
// @Failure 400 {object} response.ErrorResponse "Invalid request body or empty text"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/chat [post]
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode chat request", "error", err)
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Invalid request body", middleware.GetRequestID(ctx))
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), middleware.GetRequestID(ctx))
		return
	}

	result, err := h.agent.ProcessTurn(ctx, agent.TurnRequest{
		Text:      req.Text,
		SessionID: req.SessionID,
		UserID:    req.UserID,
	})
	if err != nil {
		switch {
		case errors.Is(err, agent.ErrEmptyText):
			response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), middleware.GetRequestID(ctx))
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			response.Error(w, http.StatusGatewayTimeout, response.ErrCodeGatewayTimeout, "Turn canceled", middleware.GetRequestID(ctx))
		default:
			h.logger.Error("Turn failed", "error", err)
			response.Error(w, http.StatusInternalServerError, response.ErrCodeInternalServer, "Failed to process turn", middleware.GetRequestID(ctx))
		}
		return
	}

	response.JSON(w, http.StatusOK, result)
}
