package handlers

import (
	"net/http"
	"strconv"

	"github.com/goclaw/anima/pkg/agent"
	"github.com/goclaw/anima/pkg/api/response"
	"github.com/goclaw/anima/pkg/conversation"
	"github.com/goclaw/anima/pkg/logger"
)

// ConversationHandler exposes the bounded conversation window.
type ConversationHandler struct {
	agent  *agent.Agent
	window *conversation.Window
	logger logger.Logger
}

// NewConversationHandler creates a conversation handler.
func NewConversationHandler(a *agent.Agent, window *conversation.Window, log logger.Logger) *ConversationHandler {
	return &ConversationHandler{agent: a, window: window, logger: log}
}

// Get handles GET /api/v1/conversation
// @Summary Get recent conversation turns
// @Description Return the most recent turns from the conversation window
// @Tags conversation
// @Produce json
// @Param limit query int false "Maximum turns to return"
// @Success 200 {object} map[string]any "Recent turns"
// @Router /api/v1/conversation [get]
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	limit := h.window.Size()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	turns := h.window.Recent(limit)
	response.JSON(w, http.StatusOK, map[string]any{
		"turns": turns,
		"count": len(turns),
	})
}

// Clear handles DELETE /api/v1/conversation
// @Summary Clear the conversation
// @Description Empty the conversation window and every provider history
// @Tags conversation
// @Produce json
// @Success 200 {object} map[string]string "Cleared"
// @Router /api/v1/conversation [delete]
func (h *ConversationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.agent.ClearConversation()
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "cleared",
	})
}
