package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aria-labs/aria-server/internal/api/recovery"
)

// Handlers bundles the constructed handler set for router assembly.
type Handlers struct {
	Chat     *ChatHandler
	Research *ResearchHandler
	Trading  *TradingHandler
	Feedback *FeedbackHandler
	Health   *HealthHandler
}

// NewRouter assembles all API routes with the global middlewares.
// CORS wraps outside the mux so preflight OPTIONS requests are
// answered even for routes registered with other methods.
func NewRouter(h Handlers, corsOrigins []string) http.Handler {
	router := mux.NewRouter()

	router.Use(recovery.Middleware)

	// Service banner and health
	router.HandleFunc("/", h.Health.Root).Methods("GET")
	router.HandleFunc("/api/health", h.Health.Check).Methods("GET")

	// Chat
	router.HandleFunc("/api/chat", h.Chat.Chat).Methods("POST")
	router.HandleFunc("/api/chat/history/{sessionId}", h.Chat.History).Methods("GET")
	router.HandleFunc("/api/chat/history/{sessionId}", h.Chat.ClearHistory).Methods("DELETE")
	router.HandleFunc("/api/chat/sessions/{sessionId}", h.Chat.DeleteSession).Methods("DELETE")

	// Research
	router.HandleFunc("/api/research/search", h.Research.WebSearch).Methods("POST")
	router.HandleFunc("/api/research/ingest", h.Research.Ingest).Methods("POST")
	router.HandleFunc("/api/research/query", h.Research.Query).Methods("POST")
	router.HandleFunc("/api/research/documents", h.Research.ListDocuments).Methods("GET")
	router.HandleFunc("/api/research/documents/{docId}", h.Research.DeleteDocument).Methods("DELETE")

	// Trading
	router.HandleFunc("/api/trading/analyze", h.Trading.Analyze).Methods("POST")
	router.HandleFunc("/api/trading/indicator", h.Trading.Indicator).Methods("POST")
	router.HandleFunc("/api/trading/quote/{symbol}", h.Trading.Quote).Methods("GET")

	// Feedback
	router.HandleFunc("/api/feedback/submit", h.Feedback.Submit).Methods("POST")
	router.HandleFunc("/api/feedback/stats", h.Feedback.Stats).Methods("GET")
	router.HandleFunc("/api/feedback/history/{sessionId}", h.Feedback.History).Methods("GET")

	return corsMiddleware(corsOrigins)(router)
}

// corsMiddleware answers preflight requests and sets the allow-origin
// header for configured origins. "*" allows every origin.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				if allowAll {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Vary", "Origin")
				}
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
