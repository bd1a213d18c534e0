package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/goclaw/anima/pkg/api/middleware"
	"github.com/goclaw/anima/pkg/api/response"
	"github.com/goclaw/anima/pkg/logger"
	"github.com/goclaw/anima/pkg/provider"
)

// SwitchRequest is the POST /api/v1/providers/switch body.
type SwitchRequest struct {
	Name string `json:"name"`
}

// ProviderHandler handles generation backend admin endpoints.
type ProviderHandler struct {
	router *provider.Router
	logger logger.Logger
}

// NewProviderHandler creates a provider handler.
func NewProviderHandler(router *provider.Router, log logger.Logger) *ProviderHandler {
	return &ProviderHandler{router: router, logger: log}
}

// List handles GET /api/v1/providers
// @Summary List providers
// @Description Return every registered backend with availability and the active flag
// @Tags providers
// @Produce json
// @Success 200 {object} map[string]any "Provider statuses"
// @Router /api/v1/providers [get]
func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"active":    h.router.ActiveName(),
		"providers": h.router.Status(),
	})
}

// Switch handles POST /api/v1/providers/switch
// @Summary Switch the active provider
// @Description Switch generation to the named backend; prefix match, case-insensitive
// @Tags providers
// @Accept json
// @Produce json
// @Param target body SwitchRequest true "Target provider"
// @Success 200 {object} map[string]string "Switched"
// @Failure 400 {object} response.ErrorResponse "Unknown or missing provider name"
// @Router /api/v1/providers/switch [post]
func (h *ProviderHandler) Switch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Invalid request body", middleware.GetRequestID(ctx))
		return
	}

	switched, err := h.router.Switch(req.Name)
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, err.Error(), middleware.GetRequestID(ctx))
		return
	}

	h.logger.Info("Provider switched", "provider", switched)
	response.JSON(w, http.StatusOK, map[string]string{
		"active": switched,
	})
}

// Test handles POST /api/v1/providers/test
// @Summary Probe every provider
// @Description Send a canned prompt through every backend and report outcomes
// @Tags providers
// @Produce json
// @Success 200 {object} map[string]any "Probe reports"
// @Router /api/v1/providers/test [post]
func (h *ProviderHandler) Test(w http.ResponseWriter, r *http.Request) {
	reports := h.router.TestAll(r.Context())
	response.JSON(w, http.StatusOK, map[string]any{
		"reports": reports,
	})
}

// Health handles POST /api/v1/providers/health
// @Summary Run a health sweep
// @Description Health-check every backend and return refreshed statuses
// @Tags providers
// @Produce json
// @Success 200 {object} map[string]any "Swept statuses"
// @Router /api/v1/providers/health [post]
func (h *ProviderHandler) Health(w http.ResponseWriter, r *http.Request) {
	statuses := h.router.HealthSweep(r.Context())
	response.JSON(w, http.StatusOK, map[string]any{
		"active":    h.router.ActiveName(),
		"providers": statuses,
	})
}
