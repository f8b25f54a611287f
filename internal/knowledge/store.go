// Package knowledge is the in-process document store: chunked text,
// a word -> chunk-id postings index, and lexical top-k retrieval.
package knowledge

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"

	"github.com/aria-labs/aria-server/internal/model"
)

const chunkIDLen = 16

type storedChunk struct {
	docID    string
	source   string
	content  string
	metadata map[string]interface{}
	seq      int
}

// Store is a volatile chunk store with an inverted postings index.
// Retrieval is intentionally lexical: a chunk's score for a query is
// the fraction of query words its content contains.
type Store struct {
	mu       sync.RWMutex
	chunks   map[string]*storedChunk
	postings map[string][]string
	nextSeq  int
}

// NewStore creates an empty knowledge store.
func NewStore() *Store {
	return &Store{
		chunks:   make(map[string]*storedChunk),
		postings: make(map[string][]string),
	}
}

// chunkID derives a stable content-addressed id: sha-256 of the content
// truncated to 16 hex characters. Identical content always maps to the
// same id regardless of owning document.
func chunkID(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:chunkIDLen]
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range tokenize(text) {
		set[w] = struct{}{}
	}
	return set
}

// Add stores a chunk and indexes every distinct lowercase word of its
// content. Re-adding identical content is idempotent: the id is reused
// and no postings entry is duplicated.
func (s *Store) Add(content, docID, source string, metadata map[string]interface{}) string {
	id := chunkID(content)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.chunks[id]; ok {
		// Same content: keep indexed words and ordering, adopt the new owner.
		existing.docID = docID
		existing.source = source
		existing.metadata = metadata
		return id
	}

	s.chunks[id] = &storedChunk{
		docID:    docID,
		source:   source,
		content:  content,
		metadata: metadata,
		seq:      s.nextSeq,
	}
	s.nextSeq++

	for word := range wordSet(content) {
		if !containsID(s.postings[word], id) {
			s.postings[word] = append(s.postings[word], id)
		}
	}
	return id
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Search ranks chunks by query-word overlap, accumulated through the
// postings index. Chunks sharing no word with the query are excluded;
// ties are broken by insertion order. Returns at most topK hits.
func (s *Store) Search(query string, topK int) []model.SearchHit {
	queryWords := wordSet(query)
	if len(queryWords) == 0 || topK <= 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for word := range queryWords {
		for _, id := range s.postings[word] {
			counts[id]++
		}
	}

	hits := make([]model.SearchHit, 0, len(counts))
	for id, n := range counts {
		c := s.chunks[id]
		hits = append(hits, model.SearchHit{
			ChunkID: id,
			DocID:   c.docID,
			Source:  c.source,
			Content: c.content,
			Score:   float64(n) / float64(len(queryWords)),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return s.chunks[hits[i].ChunkID].seq < s.chunks[hits[j].ChunkID].seq
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// DeleteByDoc removes every chunk owned by docID together with all of
// its postings entries, and returns the number of chunks removed.
func (s *Store) DeleteByDoc(docID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doomed []string
	for id, c := range s.chunks {
		if c.docID == docID {
			doomed = append(doomed, id)
		}
	}

	for _, id := range doomed {
		c := s.chunks[id]
		delete(s.chunks, id)
		for word := range wordSet(c.content) {
			ids := s.postings[word]
			for i, v := range ids {
				if v == id {
					s.postings[word] = append(ids[:i], ids[i+1:]...)
					break
				}
			}
			if len(s.postings[word]) == 0 {
				delete(s.postings, word)
			}
		}
	}
	return len(doomed)
}

// Clear empties both the chunk store and the postings index in a single
// synchronized step.
func (s *Store) Clear() {
	s.mu.Lock()
	s.chunks = make(map[string]*storedChunk)
	s.postings = make(map[string][]string)
	s.mu.Unlock()
}

// ChunkCount returns the number of stored chunks.
func (s *Store) ChunkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}
