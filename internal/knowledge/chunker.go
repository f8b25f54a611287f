package knowledge

import "strings"

// Chunk splits text into overlapping windows of size words, advancing
// size-overlap words per step. An overlap >= size is clamped to zero so
// the stride can never stall. Input with fewer words than one window
// comes back as a single chunk; empty or whitespace-only input yields
// no chunks at all.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		size = 500
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	stride := size - overlap
	var chunks []string
	for i := 0; i < len(words); i += stride {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
