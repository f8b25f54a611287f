// Package developer handles code-oriented assistant requests.
package developer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aria-labs/aria-server/internal/llm"
)

var supportedLanguages = []string{
	"python", "javascript", "typescript", "java", "cpp", "c",
	"go", "rust", "ruby", "php", "swift", "kotlin", "sql",
}

var extensionLanguages = map[string]string{
	".py": "python", ".js": "javascript", ".ts": "typescript",
	".java": "java", ".go": "go", ".rs": "rust",
	".rb": "ruby", ".php": "php", ".sql": "sql",
}

// Assistant answers developer requests with request-type aware prompts.
type Assistant struct {
	gen llm.Generator
}

// New creates a developer assistant over the given generator.
func New(gen llm.Generator) *Assistant {
	return &Assistant{gen: gen}
}

// Process answers a developer request using the conversation context.
func (a *Assistant) Process(ctx context.Context, message, convContext string) (*llm.Result, error) {
	requestType := detectRequestType(message)
	language := detectLanguage(message)

	prompt := fmt.Sprintf(`Previous context:
%s

User request: %s

Provide a helpful response with:
1. Clear explanation
2. Code examples if appropriate (use markdown code blocks)
3. Best practices and considerations

Response:`, convContext, message)

	return a.gen.Generate(ctx, llm.Request{
		Prompt:      prompt,
		System:      systemPrompt(requestType, language),
		Temperature: 0.4,
	})
}

func detectRequestType(message string) string {
	m := strings.ToLower(message)
	switch {
	case containsAny(m, "debug", "error", "fix", "bug", "issue"):
		return "debugging"
	case containsAny(m, "review", "improve", "optimize", "refactor"):
		return "review"
	case containsAny(m, "explain", "how does", "what is", "understand"):
		return "explanation"
	case containsAny(m, "generate", "create", "write", "build", "make"):
		return "generation"
	default:
		return "general"
	}
}

func detectLanguage(message string) string {
	m := strings.ToLower(message)
	words := make(map[string]bool)
	for _, w := range strings.Fields(m) {
		words[strings.Trim(w, ".,!?:;")] = true
	}
	// Whole-word match only: short names like "c" appear inside too many
	// ordinary words for substring checks to be usable.
	for _, lang := range supportedLanguages {
		if words[lang] {
			return lang
		}
	}
	for ext, lang := range extensionLanguages {
		if strings.Contains(m, ext) {
			return lang
		}
	}
	return "python"
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func systemPrompt(requestType, language string) string {
	base := fmt.Sprintf(`You are an expert %s developer and programming assistant.
You provide clear, well-documented, and production-ready code.
Always follow best practices and coding standards for %s.
Include helpful comments and explain your reasoning.`, language, language)

	additions := map[string]string{
		"debugging": `
Focus on:
- Identifying the root cause of the issue
- Explaining why the bug occurs
- Providing a corrected solution
- Suggesting preventive measures`,
		"review": `
Focus on:
- Code quality and readability
- Potential bugs or issues
- Performance optimizations
- Security considerations`,
		"explanation": `
Focus on:
- Breaking down concepts into digestible parts
- Using analogies where helpful
- Providing simple examples
- Building from fundamentals`,
		"generation": `
Focus on:
- Writing clean, working code
- Including error handling
- Adding clear documentation
- Following idiomatic patterns`,
	}

	return base + additions[requestType]
}

type safetyRule struct {
	pattern *regexp.Regexp
	message string
}

var safetyRules = []safetyRule{
	{regexp.MustCompile(`(?i)\bos\.system\b`), "os.system calls are not allowed"},
	{regexp.MustCompile(`(?i)\bsubprocess\b`), "subprocess module is not allowed"},
	{regexp.MustCompile(`(?i)\beval\b`), "eval() is not allowed"},
	{regexp.MustCompile(`(?i)\bexec\b`), "exec() is not allowed"},
	{regexp.MustCompile(`(?i)\b__import__\b`), "__import__ is not allowed"},
	{regexp.MustCompile(`(?i)\bopen\s*\([^)]*['"]w`), "writing files is not allowed"},
	{regexp.MustCompile(`(?i)\brm\s+-rf\b`), "destructive commands are not allowed"},
	{regexp.MustCompile(`(?i)\bshutil\.rmtree\b`), "recursive deletion is not allowed"},
}

// CheckCodeSafety screens code for operations the assistant refuses to
// help execute. Returns false and a reason on the first match.
func CheckCodeSafety(code string) (bool, string) {
	for _, rule := range safetyRules {
		if rule.pattern.MatchString(code) {
			return false, rule.message
		}
	}
	return true, "code appears safe"
}
