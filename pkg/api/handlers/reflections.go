package handlers

import (
	"net/http"

	"github.com/goclaw/anima/pkg/api/response"
	"github.com/goclaw/anima/pkg/memory"
)

// ReflectionHandler exposes stored self-reflections.
type ReflectionHandler struct {
	store *memory.Store
}

// NewReflectionHandler creates a reflection handler.
func NewReflectionHandler(store *memory.Store) *ReflectionHandler {
	return &ReflectionHandler{store: store}
}

// List handles GET /api/v1/reflections
// @Summary List reflections
// @Description Return the most recent self-reflection memories
// @Tags reflections
// @Produce json
// @Param limit query int false "Maximum reflections to return"
// @Success 200 {object} map[string]any "Reflections"
// @Router /api/v1/reflections [get]
func (h *ReflectionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)

	reflections := h.store.Reflections(limit)
	response.JSON(w, http.StatusOK, map[string]any{
		"reflections": reflections,
		"count":       len(reflections),
	})
}
