package model

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single immutable turn in a conversation session.
type Message struct {
	MessageID string                 `json:"messageId"`
	Role      Role                   `json:"role"`
	Content   string                 `json:"content"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// SessionInfo summarizes a conversation session.
type SessionInfo struct {
	SessionID     string     `json:"sessionId"`
	MessageCount  int        `json:"messageCount"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
}

// Document describes an ingested document; its chunks live in the knowledge store.
type Document struct {
	DocID      string                 `json:"docId"`
	Source     string                 `json:"source"`
	ChunkCount int                    `json:"chunkCount"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// SearchHit is one ranked result from the knowledge store.
type SearchHit struct {
	ChunkID string  `json:"chunkId"`
	DocID   string  `json:"docId"`
	Source  string  `json:"source"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// QueryResult is the grounded answer produced by the research engine.
type QueryResult struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// WebResult is a single web search result.
type WebResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Feedback is a persisted user rating for an assistant response.
type Feedback struct {
	FeedbackID string    `json:"feedbackId"`
	SessionID  string    `json:"sessionId"`
	MessageID  string    `json:"messageId"`
	Rating     int       `json:"rating"`
	Correction *string   `json:"correction,omitempty"`
	Module     string    `json:"module"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FeedbackStats aggregates ratings, optionally scoped to one module.
type FeedbackStats struct {
	Total            int     `json:"totalFeedback"`
	Positive         int     `json:"positive"`
	Negative         int     `json:"negative"`
	Neutral          int     `json:"neutral"`
	Corrections      int     `json:"corrections"`
	SatisfactionRate float64 `json:"satisfactionRate"`
	Module           string  `json:"module"`
}

// LearningPattern is derived from a negative feedback correction.
type LearningPattern struct {
	PatternID   string                 `json:"patternId"`
	Module      string                 `json:"module"`
	PatternType string                 `json:"patternType"`
	PatternData map[string]interface{} `json:"patternData"`
	Weight      float64                `json:"weight"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// Candle is one OHLCV bar of market data.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Quote is a point-in-time snapshot for a symbol.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name,omitempty"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previousClose"`
	Open          float64 `json:"open"`
	DayHigh       float64 `json:"dayHigh"`
	DayLow        float64 `json:"dayLow"`
	Volume        float64 `json:"volume"`
	Currency      string  `json:"currency"`
}
