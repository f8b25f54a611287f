// Package sqlite is the embedded, zero-dependency default backend for
// the feedback store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/aria-labs/aria-server/internal/model"
	"github.com/aria-labs/aria-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS feedback (
    feedback_id TEXT PRIMARY KEY,
    session_id  TEXT NOT NULL,
    message_id  TEXT NOT NULL,
    rating      INTEGER NOT NULL,
    correction  TEXT,
    module      TEXT NOT NULL,
    created_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_feedback_module ON feedback(module);

CREATE TABLE IF NOT EXISTS learning_patterns (
    pattern_id   TEXT PRIMARY KEY,
    module       TEXT NOT NULL,
    pattern_type TEXT NOT NULL,
    pattern_data TEXT NOT NULL,
    weight       REAL NOT NULL,
    created_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_patterns_module ON learning_patterns(module);
`

// Open opens (or creates) the SQLite database at path with WAL enabled
// and the schema applied.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens the database and returns a store over it.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB wires a store over an existing connection (used by tests
// and the factory).
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Feedbacks() store.Feedbacks { return &feedbacks{db: s.db} }
func (s *sqliteStore) Patterns() store.Patterns   { return &patterns{db: s.db} }

func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqliteStore) Close() error { return s.db.Close() }

type feedbacks struct{ db *sql.DB }

func (f *feedbacks) Create(ctx context.Context, m *model.Feedback) (*model.Feedback, error) {
	out := *m
	if out.FeedbackID == "" {
		out.FeedbackID = uuid.NewString()
	}
	out.CreatedAt = time.Now().UTC()

	_, err := f.db.ExecContext(ctx,
		`INSERT INTO feedback (feedback_id, session_id, message_id, rating, correction, module, created_at)
		 VALUES (?,?,?,?,?,?,?)`,
		out.FeedbackID, out.SessionID, out.MessageID, out.Rating, out.Correction, out.Module, out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *feedbacks) ListRecent(ctx context.Context, limit int) ([]model.Feedback, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := f.db.QueryContext(ctx,
		`SELECT feedback_id, session_id, message_id, rating, correction, module, created_at
		 FROM feedback ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Feedback
	for rows.Next() {
		var fb model.Feedback
		if err := rows.Scan(&fb.FeedbackID, &fb.SessionID, &fb.MessageID, &fb.Rating, &fb.Correction, &fb.Module, &fb.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}

func (f *feedbacks) ListBySession(ctx context.Context, sessionID string) ([]model.Feedback, error) {
	rows, err := f.db.QueryContext(ctx,
		`SELECT feedback_id, session_id, message_id, rating, correction, module, created_at
		 FROM feedback WHERE session_id = ? ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Feedback
	for rows.Next() {
		var fb model.Feedback
		if err := rows.Scan(&fb.FeedbackID, &fb.SessionID, &fb.MessageID, &fb.Rating, &fb.Correction, &fb.Module, &fb.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}

func (f *feedbacks) Stats(ctx context.Context, module string) (*model.FeedbackStats, error) {
	query := `SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN rating > 0 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN rating < 0 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN rating = 0 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN correction IS NOT NULL THEN 1 ELSE 0 END), 0)
	 FROM feedback`

	var row *sql.Row
	if module != "" {
		row = f.db.QueryRowContext(ctx, query+` WHERE module = ?`, module)
	} else {
		row = f.db.QueryRowContext(ctx, query)
	}

	stats := &model.FeedbackStats{Module: module}
	if err := row.Scan(&stats.Total, &stats.Positive, &stats.Negative, &stats.Neutral, &stats.Corrections); err != nil {
		return nil, err
	}
	if rated := stats.Positive + stats.Negative; rated > 0 {
		stats.SatisfactionRate = float64(stats.Positive) / float64(rated)
	}
	return stats, nil
}

type patterns struct{ db *sql.DB }

func (p *patterns) Create(ctx context.Context, m *model.LearningPattern) (*model.LearningPattern, error) {
	out := *m
	if out.PatternID == "" {
		out.PatternID = uuid.NewString()
	}
	if out.Weight == 0 {
		out.Weight = 1.0
	}
	out.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(out.PatternData)
	if err != nil {
		return nil, fmt.Errorf("marshal pattern data: %w", err)
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO learning_patterns (pattern_id, module, pattern_type, pattern_data, weight, created_at)
		 VALUES (?,?,?,?,?,?)`,
		out.PatternID, out.Module, out.PatternType, string(data), out.Weight, out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *patterns) ListByModule(ctx context.Context, module string, limit int) ([]model.LearningPattern, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT pattern_id, module, pattern_type, pattern_data, weight, created_at
		 FROM learning_patterns WHERE module = ? ORDER BY weight DESC, created_at DESC LIMIT ?`,
		module, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.LearningPattern
	for rows.Next() {
		var lp model.LearningPattern
		var data string
		if err := rows.Scan(&lp.PatternID, &lp.Module, &lp.PatternType, &data, &lp.Weight, &lp.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &lp.PatternData); err != nil {
			return nil, fmt.Errorf("unmarshal pattern data: %w", err)
		}
		out = append(out, lp)
	}
	return out, rows.Err()
}
