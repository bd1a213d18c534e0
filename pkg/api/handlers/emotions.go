package handlers

import (
	"net/http"

	"github.com/goclaw/anima/pkg/api/response"
	"github.com/goclaw/anima/pkg/emotion"
)

// EmotionHandler exposes the emotional state.
type EmotionHandler struct {
	engine *emotion.Engine
}

// NewEmotionHandler creates an emotion handler.
func NewEmotionHandler(engine *emotion.Engine) *EmotionHandler {
	return &EmotionHandler{engine: engine}
}

// Get handles GET /api/v1/emotions
// @Summary Get the emotional state
// @Description Return current channel levels, tone, intensity, and dominant emotions
// @Tags emotions
// @Produce json
// @Success 200 {object} emotion.Snapshot "Emotional snapshot"
// @Router /api/v1/emotions [get]
func (h *EmotionHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.engine.Snapshot())
}
