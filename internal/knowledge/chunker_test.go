package knowledge

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "w%d", i)
	}
	return b.String()
}

func TestChunkShortInputIsSingleChunk(t *testing.T) {
	chunks := Chunk("just a few words here", 500, 50)
	require.Len(t, chunks, 1)
	assert.Equal(t, "just a few words here", chunks[0])
}

func TestChunkThousandWordsProducesMultipleChunks(t *testing.T) {
	chunks := Chunk(words(1000), 500, 50)
	assert.Greater(t, len(chunks), 1)
}

func TestChunkRejoinedCoversEveryWord(t *testing.T) {
	text := words(1234)
	chunks := Chunk(text, 500, 50)

	seen := make(map[string]bool)
	for _, c := range chunks {
		for _, w := range strings.Fields(c) {
			seen[w] = true
		}
	}
	for _, w := range strings.Fields(text) {
		assert.True(t, seen[w], "word %s missing from chunks", w)
	}
}

func TestChunkConsecutiveWindowsOverlap(t *testing.T) {
	chunks := Chunk(words(100), 40, 10)
	require.GreaterOrEqual(t, len(chunks), 2)

	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])
	// Stride 30: the second window starts at word 30, repeating the last
	// ten words of the first.
	assert.Equal(t, first[30:], second[:10])
}

func TestChunkOverlapAtLeastSizeIsClamped(t *testing.T) {
	chunks := Chunk(words(30), 10, 10)
	require.Len(t, chunks, 3)
	assert.Equal(t, strings.Fields(chunks[0])[0], "w0")
	assert.Equal(t, strings.Fields(chunks[1])[0], "w10")
	assert.Equal(t, strings.Fields(chunks[2])[0], "w20")
}

func TestChunkEmptyAndWhitespaceInput(t *testing.T) {
	assert.Empty(t, Chunk("", 500, 50))
	assert.Empty(t, Chunk("   \n\t  ", 500, 50))
}

func TestChunkNoChunkIsEmpty(t *testing.T) {
	for _, c := range Chunk(words(1000), 500, 50) {
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}
