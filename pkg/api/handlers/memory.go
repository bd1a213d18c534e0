package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/goclaw/anima/pkg/api/middleware"
	"github.com/goclaw/anima/pkg/api/response"
	"github.com/goclaw/anima/pkg/logger"
	"github.com/goclaw/anima/pkg/memory"
)

// defaultWeakThreshold matches the importance floor used when no
// threshold query parameter is given.
const defaultWeakThreshold = 0.3

// RememberRequest is the POST /api/v1/memory body.
type RememberRequest struct {
	Content    string   `json:"content"`
	MemoryType string   `json:"memory_type,omitempty"`
	Importance *float64 `json:"importance,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// MemoryHandler handles long-term memory endpoints.
type MemoryHandler struct {
	store  *memory.Store
	logger logger.Logger
}

// NewMemoryHandler creates a memory handler.
func NewMemoryHandler(store *memory.Store, log logger.Logger) *MemoryHandler {
	return &MemoryHandler{store: store, logger: log}
}

// List handles GET /api/v1/memory
// @Summary List memories
// @Description Return a page of stored memories, newest first
// @Tags memory
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} map[string]any "Memory page"
// @Router /api/v1/memory [get]
func (h *MemoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	entries, total := h.store.List(limit, offset)
	response.JSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"total":   total,
	})
}

// Remember handles POST /api/v1/memory
// @Summary Store a memory
// @Description Store an explicit memory entry with optional type, importance, and tags
// @Tags memory
// @Accept json
// @Produce json
// @Param memory body RememberRequest true "Memory entry"
// @Success 201 {object} memory.Entry "Stored entry"
// @Failure 400 {object} response.ErrorResponse "Invalid body or empty content"
// @Router /api/v1/memory [post]
func (h *MemoryHandler) Remember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RememberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Invalid request body", middleware.GetRequestID(ctx))
		return
	}

	importance := 0.5
	if req.Importance != nil {
		importance = *req.Importance
	}

	entry, err := h.store.Remember(ctx, req.Content, req.MemoryType, importance, req.Tags)
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), middleware.GetRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusCreated, entry)
}

// Search handles GET /api/v1/memory/search
// @Summary Search memories
// @Description Keyword search over stored memories without touching access metadata
// @Tags memory
// @Produce json
// @Param q query string true "Search query"
// @Param limit query int false "Maximum results"
// @Success 200 {object} map[string]any "Matching entries"
// @Failure 400 {object} response.ErrorResponse "Missing query"
// @Router /api/v1/memory/search [get]
func (h *MemoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("q")
	if query == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Query parameter q is required", middleware.GetRequestID(ctx))
		return
	}
	limit := queryInt(r, "limit", 10)

	entries, err := h.store.Search(ctx, query, limit)
	if err != nil {
		h.logger.Error("Memory search failed", "error", err)
		response.Error(w, http.StatusInternalServerError, response.ErrCodeInternalServer, "Search failed", middleware.GetRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// Stats handles GET /api/v1/memory/stats
// @Summary Memory statistics
// @Description Return entry counts, type breakdown, and persistence health
// @Tags memory
// @Produce json
// @Success 200 {object} memory.Stats "Store statistics"
// @Router /api/v1/memory/stats [get]
func (h *MemoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.store.Stats())
}

// DeleteWeak handles DELETE /api/v1/memory/weak
// @Summary Delete weak memories
// @Description Remove old, unimportant, rarely accessed entries below the threshold
// @Tags memory
// @Produce json
// @Param threshold query number false "Importance threshold"
// @Success 200 {object} map[string]int "Removed count"
// @Router /api/v1/memory/weak [delete]
func (h *MemoryHandler) DeleteWeak(w http.ResponseWriter, r *http.Request) {
	threshold := defaultWeakThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			threshold = parsed
		}
	}

	removed := h.store.DeleteWeak(threshold)
	h.logger.Info("Weak memories deleted", "removed", removed, "threshold", threshold)
	response.JSON(w, http.StatusOK, map[string]int{
		"removed": removed,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
