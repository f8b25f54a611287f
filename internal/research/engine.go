// Package research ties document ingestion, lexical retrieval and web
// search into grounded question answering.
package research

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aria-labs/aria-server/internal/knowledge"
	"github.com/aria-labs/aria-server/internal/llm"
	"github.com/aria-labs/aria-server/internal/model"
)

// NoKnowledgeAnswer is returned verbatim when retrieval finds nothing
// relevant to ground an answer on.
const NoKnowledgeAnswer = "I don't have any relevant information in my knowledge base to answer this question. Try adding relevant documents first, or ask me to search the web."

// WebSearcher fetches external search results.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]model.WebResult, error)
}

// Engine owns the document registry and drives retrieval-grounded
// generation over the knowledge store.
type Engine struct {
	store *knowledge.Store
	gen   llm.Generator
	web   WebSearcher
	log   zerolog.Logger

	chunkSize    int
	chunkOverlap int
	topK         int

	mu   sync.RWMutex
	docs map[string]*model.Document
}

// NewEngine wires a research engine. web may be nil when web search is
// disabled.
func NewEngine(store *knowledge.Store, gen llm.Generator, web WebSearcher, chunkSize, chunkOverlap, topK int, log zerolog.Logger) *Engine {
	return &Engine{
		store:        store,
		gen:          gen,
		web:          web,
		log:          log,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		topK:         topK,
		docs:         make(map[string]*model.Document),
	}
}

// IngestDocument chunks content and indexes every chunk under a new
// document id. Empty content yields a document with zero chunks.
func (e *Engine) IngestDocument(content, source string, metadata map[string]interface{}) (*model.Document, error) {
	docID := uuid.NewString()
	chunks := knowledge.Chunk(content, e.chunkSize, e.chunkOverlap)

	for _, chunk := range chunks {
		e.store.Add(chunk, docID, source, metadata)
	}

	doc := &model.Document{
		DocID:      docID,
		Source:     source,
		ChunkCount: len(chunks),
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}

	e.mu.Lock()
	e.docs[docID] = doc
	e.mu.Unlock()

	e.log.Info().
		Str("docId", docID).
		Str("source", source).
		Int("chunks", len(chunks)).
		Msg("document ingested")
	return doc, nil
}

// Query retrieves the top chunks for the question and asks the model
// to answer strictly from them. Sources are deduplicated in the order
// their first chunk was encountered.
func (e *Engine) Query(ctx context.Context, question string) (*model.QueryResult, error) {
	hits := e.store.Search(question, e.topK)
	if len(hits) == 0 {
		return &model.QueryResult{Answer: NoKnowledgeAnswer, Sources: []string{}}, nil
	}

	blocks := make([]string, 0, len(hits))
	sources := make([]string, 0, len(hits))
	seen := make(map[string]bool)
	for _, hit := range hits {
		blocks = append(blocks, fmt.Sprintf("[Source: %s]\n%s", hit.Source, hit.Content))
		if !seen[hit.Source] {
			seen[hit.Source] = true
			sources = append(sources, hit.Source)
		}
	}

	prompt := fmt.Sprintf(`Based on the following context, answer the question. If the context doesn't contain enough information, say so.

Context:
%s

Question: %s

Answer:`, strings.Join(blocks, "\n\n"), question)

	res, err := e.gen.Generate(ctx, llm.Request{
		Prompt:      prompt,
		System:      "You are a research assistant. Answer questions accurately based on the provided context. Cite sources when possible.",
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &model.QueryResult{Answer: res.Text, Sources: sources}, nil
}

// ListDocuments returns all registered documents, newest first.
func (e *Engine) ListDocuments() []*model.Document {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*model.Document, 0, len(e.docs))
	for _, d := range e.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// DeleteDocument removes the document and cascades the delete to every
// chunk it owns. Unknown ids report model.ErrNotFound.
func (e *Engine) DeleteDocument(docID string) (int, error) {
	e.mu.Lock()
	_, ok := e.docs[docID]
	if ok {
		delete(e.docs, docID)
	}
	e.mu.Unlock()

	if !ok {
		return 0, fmt.Errorf("document %q: %w", docID, model.ErrNotFound)
	}

	removed := e.store.DeleteByDoc(docID)
	e.log.Info().Str("docId", docID).Int("chunks", removed).Msg("document deleted")
	return removed, nil
}

// Clear drops every document and every indexed chunk.
func (e *Engine) Clear() {
	e.mu.Lock()
	e.docs = make(map[string]*model.Document)
	e.mu.Unlock()
	e.store.Clear()
}

// WebSearch runs an external search and summarizes the results with
// the model. Results are returned even when summarization fails.
func (e *Engine) WebSearch(ctx context.Context, query string, maxResults int) ([]model.WebResult, string, error) {
	if e.web == nil {
		return nil, "", fmt.Errorf("web search: %w", model.ErrUnavailable)
	}

	results, err := e.web.Search(ctx, query, maxResults)
	if err != nil {
		return nil, "", fmt.Errorf("web search: %w", err)
	}
	if len(results) == 0 {
		return []model.WebResult{}, "No results found.", nil
	}

	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n%s\n%s\n\n", i+1, r.Title, r.URL, r.Snippet)
	}

	prompt := fmt.Sprintf(`Summarize the key information from these search results for the query %q:

%s
Summary:`, query, sb.String())

	res, err := e.gen.Generate(ctx, llm.Request{
		Prompt:      prompt,
		System:      "You summarize web search results concisely and factually.",
		Temperature: 0.3,
		MaxTokens:   512,
	})
	if err != nil {
		e.log.Warn().Err(err).Msg("web search summary failed")
		return results, "", nil
	}
	return results, res.Text, nil
}
