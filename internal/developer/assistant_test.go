package developer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-labs/aria-server/internal/llm"
)

type fakeGen struct {
	last llm.Request
}

func (f *fakeGen) Generate(_ context.Context, req llm.Request) (*llm.Result, error) {
	f.last = req
	return &llm.Result{Text: "ok", Model: req.Model, TokensUsed: 1}, nil
}

func (f *fakeGen) GenerateCode(_ context.Context, prompt, _, _ string) (*llm.Result, error) {
	return &llm.Result{Text: "ok"}, nil
}

func (f *fakeGen) HealthPing(context.Context) error { return nil }

func TestDetectRequestType(t *testing.T) {
	cases := map[string]string{
		"please fix this bug":            "debugging",
		"can you review my function":     "review",
		"explain how does a mutex work":  "explanation",
		"write a parser for csv":         "generation",
		"thoughts on architecture here?": "general",
	}
	for msg, want := range cases {
		assert.Equal(t, want, detectRequestType(msg), "message: %s", msg)
	}
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "go", detectLanguage("idiomatic Go error handling"))
	assert.Equal(t, "rust", detectLanguage("borrow checker in rust"))
	assert.Equal(t, "javascript", detectLanguage("what does app.js do"))
	assert.Equal(t, "python", detectLanguage("no language mentioned"))
}

func TestProcessBuildsPromptFromContext(t *testing.T) {
	gen := &fakeGen{}
	a := New(gen)

	res, err := a.Process(context.Background(), "debug my go code", "USER: earlier question")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)

	assert.Contains(t, gen.last.Prompt, "USER: earlier question")
	assert.Contains(t, gen.last.Prompt, "debug my go code")
	assert.Contains(t, gen.last.System, "go developer")
	assert.Contains(t, gen.last.System, "root cause")
	assert.InDelta(t, 0.4, gen.last.Temperature, 1e-9)
}

func TestCheckCodeSafety(t *testing.T) {
	ok, _ := CheckCodeSafety("print('hello world')")
	assert.True(t, ok)

	unsafe := []string{
		"os.system('ls')",
		"import subprocess",
		"eval(user_input)",
		"rm -rf /",
		"shutil.rmtree(path)",
	}
	for _, code := range unsafe {
		ok, msg := CheckCodeSafety(code)
		assert.False(t, ok, "expected %q to be flagged", code)
		assert.NotEmpty(t, msg)
	}
}
