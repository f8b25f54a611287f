package memory

import (
	"math"
	"strings"
)

// tokensPerWord is a fixed approximation; exact tokenizer compatibility
// is not required anywhere in the service.
const tokensPerWord = 1.3

func estimateTokens(text string) int {
	words := len(strings.Fields(text))
	return int(math.Ceil(float64(words) * tokensPerWord))
}

// Context renders a session's recent history as prompt text under an
// approximate token budget. Messages are admitted newest-first and each
// is admitted whole or not at all; the returned block is oldest-first.
// A session with no usable history yields an empty string.
func (s *Store) Context(sessionID string, maxTokens int) string {
	history := s.History(sessionID, 0)

	var parts []string
	used := 0
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		line := strings.ToUpper(string(msg.Role)) + ": " + msg.Content
		cost := estimateTokens(line)
		if used+cost > maxTokens {
			break
		}
		parts = append([]string{line}, parts...)
		used += cost
	}

	return strings.Join(parts, "\n")
}
