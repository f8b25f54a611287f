package api

import (
	"net/http"
	"time"

	"github.com/aria-labs/aria-server/internal/agent"
	"github.com/aria-labs/aria-server/internal/api/respond"
	"github.com/aria-labs/aria-server/internal/store"
)

type HealthHandler struct {
	agent   *agent.Agent
	store   store.Store
	started time.Time
	version string
}

func NewHealthHandler(a *agent.Agent, s store.Store, version string) *HealthHandler {
	return &HealthHandler{agent: a, store: s, started: time.Now().UTC(), version: version}
}

// Root GET /
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]string{
		"service": "aria-server",
		"version": h.version,
		"status":  "running",
	})
}

// Check GET /api/health reports per-component status. The service is
// "degraded" rather than down when the LLM or store is unreachable,
// because chat history and retrieval still work.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	components := h.agent.Health(r.Context())

	if h.store != nil {
		if err := h.store.HealthPing(r.Context()); err != nil {
			components["store"] = "unreachable"
		} else {
			components["store"] = "ok"
		}
	}

	status := "healthy"
	for _, v := range components {
		if v != "ok" {
			status = "degraded"
			break
		}
	}

	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     status,
		"components": components,
		"uptime":     time.Since(h.started).Round(time.Second).String(),
		"version":    h.version,
	})
}
