// Package api exposes the public HTTP surface over gorilla/mux.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/aria-labs/aria-server/internal/agent"
	"github.com/aria-labs/aria-server/internal/api/respond"
	"github.com/aria-labs/aria-server/internal/api/validate"
	"github.com/aria-labs/aria-server/internal/memory"
	"github.com/aria-labs/aria-server/internal/model"
)

type ChatHandler struct {
	agent    *agent.Agent
	sessions *memory.Store
}

func NewChatHandler(a *agent.Agent, sessions *memory.Store) *ChatHandler {
	return &ChatHandler{agent: a, sessions: sessions}
}

// Chat POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message   string `json:"message"`
		SessionID string `json:"sessionId,omitempty"`
		Module    string `json:"module,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	req.Message = validate.Sanitize(req.Message)
	if err := validate.ChatMessage(req.Message); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.Module(req.Module); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	out, err := h.agent.Chat(r.Context(), req.SessionID, req.Message, req.Module)
	if err != nil {
		writeModuleError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// History GET /api/chat/history/{sessionId}
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	if !h.sessions.Exists(sessionID) {
		respond.WriteNotFound(w, "session not found")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respond.WriteBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	info, _ := h.sessions.Info(sessionID)
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": sessionID,
		"messages":  h.sessions.History(sessionID, limit),
		"info":      info,
	})
}

// ClearHistory DELETE /api/chat/history/{sessionId}
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	if !h.sessions.Clear(sessionID) {
		respond.WriteNotFound(w, "session not found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "cleared", "sessionId": sessionID})
}

// DeleteSession DELETE /api/chat/sessions/{sessionId}
func (h *ChatHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	if !h.sessions.Delete(sessionID) {
		respond.WriteNotFound(w, "session not found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "sessionId": sessionID})
}

// writeModuleError maps sentinel errors from the modules onto HTTP
// status codes.
func writeModuleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrModelMissing), errors.Is(err, model.ErrUnavailable):
		respond.WriteServiceUnavailable(w, err.Error())
	default:
		respond.WriteInternalError(w, err.Error())
	}
}
