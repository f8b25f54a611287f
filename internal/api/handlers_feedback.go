package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/aria-labs/aria-server/internal/api/respond"
	"github.com/aria-labs/aria-server/internal/api/validate"
	"github.com/aria-labs/aria-server/internal/model"
	"github.com/aria-labs/aria-server/internal/store"
)

type FeedbackHandler struct {
	store store.Store
	log   zerolog.Logger
}

func NewFeedbackHandler(s store.Store, log zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{store: s, log: log}
}

// Submit POST /api/feedback/submit
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID  string  `json:"sessionId"`
		MessageID  string  `json:"messageId"`
		Rating     int     `json:"rating"`
		Correction *string `json:"correction,omitempty"`
		Module     string  `json:"module,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	if req.SessionID == "" || req.MessageID == "" {
		respond.WriteBadRequest(w, "sessionId and messageId are required")
		return
	}
	if err := validate.Rating(req.Rating); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.Module(req.Module); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if req.Module == "" {
		req.Module = "general"
	}
	if req.Correction != nil {
		clean := validate.Sanitize(*req.Correction)
		req.Correction = &clean
	}

	created, err := h.store.Feedbacks().Create(r.Context(), &model.Feedback{
		SessionID:  req.SessionID,
		MessageID:  req.MessageID,
		Rating:     req.Rating,
		Correction: req.Correction,
		Module:     req.Module,
	})
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}

	// A negative rating with a correction is a learning signal worth
	// keeping for later prompt tuning.
	if req.Rating < 0 && req.Correction != nil && *req.Correction != "" {
		_, err := h.store.Patterns().Create(r.Context(), &model.LearningPattern{
			Module:      req.Module,
			PatternType: "correction",
			PatternData: map[string]interface{}{
				"messageId":  req.MessageID,
				"correction": *req.Correction,
			},
		})
		if err != nil {
			h.log.Warn().Err(err).Str("feedback_id", created.FeedbackID).Msg("learning pattern creation failed")
		}
	}

	respond.WriteJSON(w, http.StatusCreated, created)
}

// Stats GET /api/feedback/stats
func (h *FeedbackHandler) Stats(w http.ResponseWriter, r *http.Request) {
	module := r.URL.Query().Get("module")
	if err := validate.Module(module); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	stats, err := h.store.Feedbacks().Stats(r.Context(), module)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, stats)
}

// History GET /api/feedback/history/{sessionId}
func (h *FeedbackHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	list, err := h.store.Feedbacks().ListBySession(r.Context(), sessionID)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if list == nil {
		list = []model.Feedback{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": sessionID,
		"feedback":  list,
	})
}
