package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-labs/aria-server/internal/model"
	"github.com/aria-labs/aria-server/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aria.db")
	s, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestFeedbackCreateAndList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	correction := "should have mentioned goroutines"
	created, err := s.Feedbacks().Create(ctx, &model.Feedback{
		SessionID:  "sess-1",
		MessageID:  "msg-1",
		Rating:     -1,
		Correction: &correction,
		Module:     "developer",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.FeedbackID)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = s.Feedbacks().Create(ctx, &model.Feedback{
		SessionID: "sess-1",
		MessageID: "msg-2",
		Rating:    1,
		Module:    "general",
	})
	require.NoError(t, err)

	list, err := s.Feedbacks().ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)

	var negative *model.Feedback
	for i := range list {
		if list[i].Rating == -1 {
			negative = &list[i]
		}
	}
	require.NotNil(t, negative)
	require.NotNil(t, negative.Correction)
	assert.Equal(t, correction, *negative.Correction)

	bySession, err := s.Feedbacks().ListBySession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, bySession, 2)

	none, err := s.Feedbacks().ListBySession(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFeedbackStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	correction := "wrong"
	seed := []model.Feedback{
		{SessionID: "s", MessageID: "m1", Rating: 1, Module: "general"},
		{SessionID: "s", MessageID: "m2", Rating: 1, Module: "developer"},
		{SessionID: "s", MessageID: "m3", Rating: -1, Correction: &correction, Module: "developer"},
		{SessionID: "s", MessageID: "m4", Rating: 0, Module: "trading"},
	}
	for i := range seed {
		_, err := s.Feedbacks().Create(ctx, &seed[i])
		require.NoError(t, err)
	}

	stats, err := s.Feedbacks().Stats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Positive)
	assert.Equal(t, 1, stats.Negative)
	assert.Equal(t, 1, stats.Neutral)
	assert.Equal(t, 1, stats.Corrections)
	assert.InDelta(t, 2.0/3.0, stats.SatisfactionRate, 1e-9)

	devStats, err := s.Feedbacks().Stats(ctx, "developer")
	require.NoError(t, err)
	assert.Equal(t, 2, devStats.Total)
	assert.Equal(t, 1, devStats.Positive)
	assert.Equal(t, 1, devStats.Negative)
	assert.InDelta(t, 0.5, devStats.SatisfactionRate, 1e-9)
}

func TestFeedbackStatsEmpty(t *testing.T) {
	s := newTestStore(t)
	stats, err := s.Feedbacks().Stats(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.InDelta(t, 0.0, stats.SatisfactionRate, 1e-9)
}

func TestPatternsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.Patterns().Create(ctx, &model.LearningPattern{
		Module:      "developer",
		PatternType: "correction",
		PatternData: map[string]interface{}{"hint": "prefer channels"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.PatternID)
	assert.InDelta(t, 1.0, created.Weight, 1e-9)

	_, err = s.Patterns().Create(ctx, &model.LearningPattern{
		Module:      "developer",
		PatternType: "correction",
		PatternData: map[string]interface{}{"hint": "avoid globals"},
		Weight:      2.5,
	})
	require.NoError(t, err)

	list, err := s.Patterns().ListByModule(ctx, "developer", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Heavier patterns surface first.
	assert.InDelta(t, 2.5, list[0].Weight, 1e-9)
	assert.Equal(t, "avoid globals", list[0].PatternData["hint"])

	other, err := s.Patterns().ListByModule(ctx, "trading", 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestHealthPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.HealthPing(context.Background()))
}
