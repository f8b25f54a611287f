package memory

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-labs/aria-server/internal/model"
)

func newTestStore(maxHistory int) *Store {
	return NewStore(maxHistory, zerolog.Nop())
}

func TestCreateGeneratesDistinctIDs(t *testing.T) {
	st := newTestStore(20)

	a := st.Create("")
	b := st.Create("")

	require.NotEmpty(t, a)
	require.NotEmpty(t, b)
	assert.NotEqual(t, a, b)
}

func TestCreateWithExplicitIDThenAppend(t *testing.T) {
	st := newTestStore(20)

	id := st.Create("custom")
	require.Equal(t, "custom", id)

	st.Append("custom", model.RoleUser, "hi", nil)

	history := st.History("custom", 0)
	require.Len(t, history, 1)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, model.RoleUser, history[0].Role)
}

func TestRecreateResetsLog(t *testing.T) {
	st := newTestStore(20)

	st.Create("s1")
	st.Append("s1", model.RoleUser, "old", nil)
	st.Create("s1")

	assert.Empty(t, st.History("s1", 0))
}

func TestAppendAutoCreatesSession(t *testing.T) {
	st := newTestStore(20)

	msgID := st.Append("fresh", model.RoleUser, "hello", nil)

	require.NotEmpty(t, msgID)
	assert.True(t, st.Exists("fresh"))
}

func TestAppendEvictsOldestFirst(t *testing.T) {
	st := newTestStore(5)
	st.Create("s1")

	for i := 0; i < 12; i++ {
		st.Append("s1", model.RoleUser, fmt.Sprintf("msg-%d", i), nil)
	}

	history := st.History("s1", 0)
	require.Len(t, history, 5)
	for i, msg := range history {
		assert.Equal(t, fmt.Sprintf("msg-%d", 7+i), msg.Content)
	}
}

func TestHistoryLimitReturnsMostRecentInOrder(t *testing.T) {
	st := newTestStore(20)
	for i := 0; i < 6; i++ {
		st.Append("s1", model.RoleUser, fmt.Sprintf("msg-%d", i), nil)
	}

	history := st.History("s1", 2)
	require.Len(t, history, 2)
	assert.Equal(t, "msg-4", history[0].Content)
	assert.Equal(t, "msg-5", history[1].Content)
}

func TestHistoryUnknownSessionIsEmptyNotError(t *testing.T) {
	st := newTestStore(20)
	assert.Empty(t, st.History("nope", 0))
}

func TestMessageIDsAreUnique(t *testing.T) {
	st := newTestStore(200)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := st.Append("s1", model.RoleUser, "x", nil)
		require.False(t, seen[id], "duplicate message id %s", id)
		seen[id] = true
	}
}

func TestClearKeepsSessionAlive(t *testing.T) {
	st := newTestStore(20)
	st.Append("s1", model.RoleUser, "hi", nil)

	require.True(t, st.Clear("s1"))
	assert.Empty(t, st.History("s1", 0))
	assert.True(t, st.Exists("s1"))

	assert.False(t, st.Clear("unknown"))
}

func TestDeleteRemovesSession(t *testing.T) {
	st := newTestStore(20)
	st.Append("s1", model.RoleUser, "hi", nil)

	require.True(t, st.Delete("s1"))
	assert.False(t, st.Exists("s1"))
	assert.False(t, st.Delete("s1"))
}

func TestInfoTracksCounts(t *testing.T) {
	st := newTestStore(20)
	st.Append("s1", model.RoleUser, "a", nil)
	st.Append("s1", model.RoleAssistant, "b", nil)

	info, ok := st.Info("s1")
	require.True(t, ok)
	assert.Equal(t, 2, info.MessageCount)
	assert.NotNil(t, info.LastMessageAt)

	_, ok = st.Info("unknown")
	assert.False(t, ok)
}

func TestContextRespectsTokenBudget(t *testing.T) {
	st := newTestStore(50)
	for i := 0; i < 10; i++ {
		// Ten words per message: estimated cost ceil(11*1.3) = 15 per line.
		st.Append("s1", model.RoleUser, strings.Repeat("word ", 9)+"tail", nil)
	}

	out := st.Context("s1", 40)
	require.NotEmpty(t, out)

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)

	total := 0
	for _, line := range lines {
		total += estimateTokens(line)
	}
	assert.LessOrEqual(t, total, 40)
}

func TestContextPreservesChronologicalOrder(t *testing.T) {
	st := newTestStore(20)
	st.Append("s1", model.RoleUser, "first", nil)
	st.Append("s1", model.RoleAssistant, "second", nil)
	st.Append("s1", model.RoleUser, "third", nil)

	out := st.Context("s1", 1000)
	assert.Equal(t, "USER: first\nASSISTANT: second\nUSER: third", out)
}

func TestContextEmptyForUnknownSession(t *testing.T) {
	st := newTestStore(20)
	assert.Equal(t, "", st.Context("nope", 100))
}

func TestContextNeverSplitsAMessage(t *testing.T) {
	st := newTestStore(20)
	st.Append("s1", model.RoleUser, strings.Repeat("giant ", 200), nil)
	st.Append("s1", model.RoleUser, "tiny", nil)

	// Budget fits only the newest message; the older giant one must be
	// dropped whole, not truncated.
	out := st.Context("s1", 5)
	assert.Equal(t, "USER: tiny", out)
}

func TestConcurrentAppendsKeepBound(t *testing.T) {
	st := newTestStore(10)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				st.Append("shared", model.RoleUser, fmt.Sprintf("w%d-%d", w, i), nil)
				_ = st.History("shared", 0)
			}
		}(w)
	}
	wg.Wait()

	assert.Len(t, st.History("shared", 0), 10)
}
