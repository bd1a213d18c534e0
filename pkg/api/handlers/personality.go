package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/goclaw/anima/pkg/api/middleware"
	"github.com/goclaw/anima/pkg/api/response"
	"github.com/goclaw/anima/pkg/logger"
	"github.com/goclaw/anima/pkg/personality"
)

// MoodRequest is the PUT /api/v1/personality/mood body.
type MoodRequest struct {
	Mood string `json:"mood"`
}

// PersonalityHandler exposes the personality layer.
type PersonalityHandler struct {
	state  *personality.State
	logger logger.Logger
}

// NewPersonalityHandler creates a personality handler.
func NewPersonalityHandler(state *personality.State, log logger.Logger) *PersonalityHandler {
	return &PersonalityHandler{state: state, logger: log}
}

// Get handles GET /api/v1/personality
// @Summary Get the personality
// @Description Return the persona name, current mood, and effective traits
// @Tags personality
// @Produce json
// @Success 200 {object} personality.Snapshot "Personality snapshot"
// @Router /api/v1/personality [get]
func (h *PersonalityHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.state.Snapshot())
}

// SetMood handles PUT /api/v1/personality/mood
// @Summary Set the mood
// @Description Switch the active mood overlay
// @Tags personality
// @Accept json
// @Produce json
// @Param mood body MoodRequest true "Target mood"
// @Success 200 {object} personality.Snapshot "Updated personality"
// @Failure 400 {object} response.ErrorResponse "Unknown mood"
// @Router /api/v1/personality/mood [put]
func (h *PersonalityHandler) SetMood(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req MoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Invalid request body", middleware.GetRequestID(ctx))
		return
	}

	if err := h.state.SetMood(personality.Mood(req.Mood)); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), middleware.GetRequestID(ctx))
		return
	}

	h.logger.Info("Mood changed", "mood", req.Mood)
	response.JSON(w, http.StatusOK, h.state.Snapshot())
}
