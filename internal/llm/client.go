// Package llm wraps the local Ollama HTTP API used for generation.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aria-labs/aria-server/internal/model"
)

// Generator is the generation boundary consumed by the agent and the
// research engine.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
	GenerateCode(ctx context.Context, prompt, language, codeContext string) (*Result, error)
	HealthPing(ctx context.Context) error
}

// Request describes one generation call.
type Request struct {
	Prompt      string
	System      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Result carries the generated text and usage metadata.
type Result struct {
	Text       string `json:"text"`
	Model      string `json:"model"`
	TokensUsed int    `json:"tokensUsed"`
}

// Client calls the Ollama generate API.
type Client struct {
	http      *resty.Client
	model     string
	codeModel string
}

// New creates a client against the given base URL with the configured
// default and code models.
func New(baseURL, defaultModel, codeModel string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &Client{http: c, model: defaultModel, codeModel: codeModel}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response  string `json:"response"`
	EvalCount int    `json:"eval_count"`
	Done      bool   `json:"done"`
	Error     string `json:"error"`
}

// Generate performs a single non-streaming generation call. A 404 from
// Ollama means the model is not pulled and maps to model.ErrModelMissing.
func (c *Client) Generate(ctx context.Context, req Request) (*Result, error) {
	mdl := req.Model
	if mdl == "" {
		mdl = c.model
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	body := generateRequest{
		Model:  mdl,
		Prompt: req.Prompt,
		System: req.System,
		Stream: false,
		Options: generateOptions{
			Temperature: temperature,
			NumPredict:  maxTokens,
		},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&body).
		Post("/api/generate")
	if err != nil {
		return nil, fmt.Errorf("ollama request: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("model %q: %w", mdl, model.ErrModelMissing)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("ollama status %d: %w", resp.StatusCode(), model.ErrUnavailable)
	}

	var out generateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", out.Error)
	}

	return &Result{Text: out.Response, Model: mdl, TokensUsed: out.EvalCount}, nil
}

// GenerateCode runs the code-specialized model at low temperature.
func (c *Client) GenerateCode(ctx context.Context, prompt, language, codeContext string) (*Result, error) {
	system := fmt.Sprintf(`You are an expert %s programmer.
Generate clean, well-documented, and efficient code.
Always include comments explaining the logic.
Follow best practices and coding standards for %s.`, language, language)

	if codeContext != "" {
		prompt = fmt.Sprintf("Context:\n%s\n\nRequest:\n%s", codeContext, prompt)
	}

	return c.Generate(ctx, Request{
		Prompt:      prompt,
		System:      system,
		Model:       c.codeModel,
		Temperature: 0.3,
	})
}

// HealthPing checks that Ollama is reachable via /api/tags.
func (c *Client) HealthPing(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("ollama status %d", resp.StatusCode())
	}
	return nil
}

// ListModels returns the model names Ollama currently serves.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("ollama status %d", resp.StatusCode())
	}
	var data struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(data.Models))
	for _, m := range data.Models {
		names = append(names, m.Name)
	}
	return names, nil
}
