package handlers

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/goclaw/anima/pkg/agent"
	"github.com/goclaw/anima/pkg/api/response"
	"github.com/goclaw/anima/pkg/memory"
	"github.com/goclaw/anima/pkg/provider"
	"github.com/goclaw/anima/pkg/version"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	agent  *agent.Agent
	router *provider.Router
	store  *memory.Store
	ready  atomic.Bool
}

// NewHealthHandler creates a health handler. Call SetReady(true) once
// the router is initialized and the memory store has loaded.
func NewHealthHandler(a *agent.Agent, router *provider.Router, store *memory.Store) *HealthHandler {
	return &HealthHandler{
		agent:  a,
		router: router,
		store:  store,
	}
}

// SetReady flips the readiness gate.
func (h *HealthHandler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Health handles the /health endpoint (liveness probe).
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Ready handles the /ready endpoint (readiness probe).
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.ready.Load() {
		response.JSON(w, http.StatusOK, map[string]bool{
			"ready": true,
		})
	} else {
		response.JSON(w, http.StatusServiceUnavailable, map[string]bool{
			"ready": false,
		})
	}
}

// Status handles the /status endpoint (detailed status).
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":          "ok",
		"version":         version.Version,
		"uptime_seconds":  int64(h.agent.Uptime() / time.Second),
		"interactions":    h.agent.Interactions(),
		"active_provider": h.router.ActiveName(),
		"memory": map[string]any{
			"entries":  h.store.Len(),
			"degraded": h.store.Degraded(),
		},
	}
	if h.store.Degraded() {
		status["status"] = "degraded"
	}
	response.JSON(w, http.StatusOK, status)
}
