// Package validate holds the request validation rules for the public
// HTTP API. Handlers reject invalid input before it reaches a module.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	maxMessageLen  = 10000
	maxQueryLen    = 500
	maxContentLen  = 100000
	maxQuestionLen = 1000
)

var symbolRx = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

var validModules = map[string]bool{
	"": true, "general": true, "developer": true, "trading": true, "research": true,
}

var validPeriods = map[string]bool{
	"1d": true, "5d": true, "1mo": true, "3mo": true,
	"6mo": true, "1y": true, "2y": true, "5y": true,
}

var validIndicators = map[string]bool{
	"sma": true, "ema": true, "rsi": true, "macd": true,
	"bollinger": true, "atr": true,
}

// Sanitize strips control characters (except newline and tab) from
// user-supplied text.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// ChatMessage validates a chat message body.
func ChatMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message is required")
	}
	if len(message) > maxMessageLen {
		return fmt.Errorf("message exceeds %d characters", maxMessageLen)
	}
	return nil
}

// Module validates the target module name. Empty means general.
func Module(module string) error {
	if !validModules[module] {
		return fmt.Errorf("unknown module %q", module)
	}
	return nil
}

// SearchQuery validates a knowledge or web search query.
func SearchQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required")
	}
	if len(query) > maxQueryLen {
		return fmt.Errorf("query exceeds %d characters", maxQueryLen)
	}
	return nil
}

// DocumentContent validates document content for ingestion.
func DocumentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content is required")
	}
	if len(content) > maxContentLen {
		return fmt.Errorf("content exceeds %d characters", maxContentLen)
	}
	return nil
}

// Question validates a research question.
func Question(question string) error {
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("question is required")
	}
	if len(question) > maxQuestionLen {
		return fmt.Errorf("question exceeds %d characters", maxQuestionLen)
	}
	return nil
}

// Symbol validates a ticker symbol: uppercase alphanumerics, at most
// 10 characters.
func Symbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if !symbolRx.MatchString(symbol) {
		return fmt.Errorf("symbol must match %s", symbolRx.String())
	}
	return nil
}

// Period validates a history period. Empty falls back to the default.
func Period(period string) error {
	if period == "" {
		return nil
	}
	if !validPeriods[period] {
		return fmt.Errorf("unknown period %q", period)
	}
	return nil
}

// Indicator validates an indicator name.
func Indicator(name string) error {
	if !validIndicators[name] {
		return fmt.Errorf("unknown indicator %q", name)
	}
	return nil
}

// Rating validates a feedback rating: -1, 0 or 1.
func Rating(rating int) error {
	if rating < -1 || rating > 1 {
		return fmt.Errorf("rating must be -1, 0 or 1")
	}
	return nil
}
