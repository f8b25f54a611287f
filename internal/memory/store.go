// Package memory holds the volatile per-session conversation logs and
// derives token-bounded prompt context from them.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aria-labs/aria-server/internal/model"
)

// Store keeps bounded, ordered message logs keyed by session id.
// All state is process-lifetime only.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string]*session
	maxHistory int
	log        zerolog.Logger
}

type session struct {
	mu            sync.RWMutex
	messages      []model.Message
	createdAt     time.Time
	lastMessageAt *time.Time
}

// NewStore creates a session store that retains at most maxHistory
// messages per session, evicting oldest-first.
func NewStore(maxHistory int, log zerolog.Logger) *Store {
	if maxHistory <= 0 {
		maxHistory = 20
	}
	return &Store{
		sessions:   make(map[string]*session),
		maxHistory: maxHistory,
		log:        log,
	}
}

// Create registers a session and returns its id. An empty id gets a
// generated one. Re-creating an existing id resets its log.
func (s *Store) Create(sessionID string) string {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	s.mu.Lock()
	s.sessions[sessionID] = &session{createdAt: time.Now().UTC()}
	s.mu.Unlock()

	s.log.Info().Str("session_id", sessionID).Msg("created session")
	return sessionID
}

// Append adds a message to a session, creating the session if absent,
// and returns the message id. When the log exceeds the retention limit
// the oldest messages are evicted.
func (s *Store) Append(sessionID string, role model.Role, content string, metadata map[string]interface{}) string {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{createdAt: time.Now().UTC()}
		s.sessions[sessionID] = sess
	}
	s.mu.Unlock()

	msg := model.Message{
		MessageID: uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
		Metadata:  metadata,
	}

	sess.mu.Lock()
	sess.messages = append(sess.messages, msg)
	if len(sess.messages) > s.maxHistory {
		sess.messages = sess.messages[len(sess.messages)-s.maxHistory:]
	}
	now := msg.CreatedAt
	sess.lastMessageAt = &now
	sess.mu.Unlock()

	return msg.MessageID
}

// History returns the most recent limit messages (all when limit <= 0)
// in chronological order. Unknown sessions yield an empty slice.
func (s *Store) History(sessionID string, limit int) []model.Message {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return []model.Message{}
	}

	sess.mu.RLock()
	defer sess.mu.RUnlock()

	msgs := sess.messages
	if limit > 0 && limit < len(msgs) {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out
}

// Clear empties a session's log but keeps the session alive.
func (s *Store) Clear(sessionID string) bool {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	sess.mu.Lock()
	sess.messages = nil
	sess.mu.Unlock()

	s.log.Info().Str("session_id", sessionID).Msg("cleared session")
	return true
}

// Delete removes a session and its metadata entirely.
func (s *Store) Delete(sessionID string) bool {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()
	if ok {
		s.log.Info().Str("session_id", sessionID).Msg("deleted session")
	}
	return ok
}

// Info returns session metadata, or false for an unknown session.
func (s *Store) Info(sessionID string) (model.SessionInfo, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return model.SessionInfo{}, false
	}

	sess.mu.RLock()
	defer sess.mu.RUnlock()
	return model.SessionInfo{
		SessionID:     sessionID,
		MessageCount:  len(sess.messages),
		CreatedAt:     sess.createdAt,
		LastMessageAt: sess.lastMessageAt,
	}, true
}

// Exists reports whether the session id is known.
func (s *Store) Exists(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[sessionID]
	return ok
}

// ListSessions returns all live session ids.
func (s *Store) ListSessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}
