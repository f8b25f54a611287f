// Package store defines the persistence boundary for feedback and
// learning patterns. Conversation memory and the knowledge index are
// deliberately volatile; only feedback survives restarts.
package store

import (
	"context"

	"github.com/aria-labs/aria-server/internal/model"
)

// Store aggregates the persisted sub-stores behind one boundary.
type Store interface {
	Feedbacks() Feedbacks
	Patterns() Patterns
	HealthPing(ctx context.Context) error
	Close() error
}

// Feedbacks persists user ratings of assistant responses.
type Feedbacks interface {
	Create(ctx context.Context, f *model.Feedback) (*model.Feedback, error)
	ListRecent(ctx context.Context, limit int) ([]model.Feedback, error)
	ListBySession(ctx context.Context, sessionID string) ([]model.Feedback, error)
	Stats(ctx context.Context, module string) (*model.FeedbackStats, error)
}

// Patterns persists learning patterns derived from corrections.
type Patterns interface {
	Create(ctx context.Context, p *model.LearningPattern) (*model.LearningPattern, error)
	ListByModule(ctx context.Context, module string, limit int) ([]model.LearningPattern, error)
}
