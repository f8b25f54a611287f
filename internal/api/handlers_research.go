package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aria-labs/aria-server/internal/api/respond"
	"github.com/aria-labs/aria-server/internal/api/validate"
	"github.com/aria-labs/aria-server/internal/research"
)

type ResearchHandler struct {
	engine     *research.Engine
	maxResults int
}

func NewResearchHandler(engine *research.Engine, maxResults int) *ResearchHandler {
	return &ResearchHandler{engine: engine, maxResults: maxResults}
}

// WebSearch POST /api/research/search
func (h *ResearchHandler) WebSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query      string `json:"query"`
		MaxResults int    `json:"maxResults,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	req.Query = validate.Sanitize(req.Query)
	if err := validate.SearchQuery(req.Query); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if req.MaxResults <= 0 || req.MaxResults > h.maxResults {
		req.MaxResults = h.maxResults
	}

	results, summary, err := h.engine.WebSearch(r.Context(), req.Query, req.MaxResults)
	if err != nil {
		writeModuleError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":   req.Query,
		"results": results,
		"summary": summary,
	})
}

// Ingest POST /api/research/ingest
func (h *ResearchHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content  string                 `json:"content"`
		Source   string                 `json:"source,omitempty"`
		Metadata map[string]interface{} `json:"metadata,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	if err := validate.DocumentContent(req.Content); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if req.Source == "" {
		req.Source = "user-upload"
	}

	doc, err := h.engine.IngestDocument(req.Content, req.Source, req.Metadata)
	if err != nil {
		writeModuleError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, doc)
}

// Query POST /api/research/query
func (h *ResearchHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	req.Question = validate.Sanitize(req.Question)
	if err := validate.Question(req.Question); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	res, err := h.engine.Query(r.Context(), req.Question)
	if err != nil {
		writeModuleError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}

// ListDocuments GET /api/research/documents
func (h *ResearchHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := h.engine.ListDocuments()
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	})
}

// DeleteDocument DELETE /api/research/documents/{docId}
func (h *ResearchHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := mux.Vars(r)["docId"]
	removed, err := h.engine.DeleteDocument(docID)
	if err != nil {
		writeModuleError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "deleted",
		"docId":         docID,
		"chunksRemoved": removed,
	})
}
