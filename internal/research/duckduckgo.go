package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aria-labs/aria-server/internal/model"
)

// DuckDuckGoClient queries the DuckDuckGo instant answer API. It needs
// no API key, which keeps the default deployment self-contained.
type DuckDuckGoClient struct {
	http *resty.Client
}

// NewDuckDuckGoClient creates a client. baseURL is overridable for
// tests; pass "" for the public endpoint.
func NewDuckDuckGoClient(baseURL string, timeout time.Duration) *DuckDuckGoClient {
	if baseURL == "" {
		baseURL = "https://api.duckduckgo.com"
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &DuckDuckGoClient{http: c}
}

type ddgResponse struct {
	AbstractText   string `json:"AbstractText"`
	AbstractURL    string `json:"AbstractURL"`
	AbstractSource string `json:"AbstractSource"`
	Heading        string `json:"Heading"`
	RelatedTopics  []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// Search returns the instant answer abstract (when present) followed
// by related topics, capped at maxResults.
func (d *DuckDuckGoClient) Search(ctx context.Context, query string, maxResults int) ([]model.WebResult, error) {
	resp, err := d.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":             query,
			"format":        "json",
			"no_html":       "1",
			"skip_disambig": "1",
		}).
		Get("/")
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo status %d: %w", resp.StatusCode(), model.ErrUnavailable)
	}

	var out ddgResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode duckduckgo response: %w", err)
	}

	results := make([]model.WebResult, 0, maxResults)
	if out.AbstractText != "" {
		title := out.Heading
		if title == "" {
			title = out.AbstractSource
		}
		results = append(results, model.WebResult{
			Title:   title,
			URL:     out.AbstractURL,
			Snippet: out.AbstractText,
		})
	}
	for _, topic := range out.RelatedTopics {
		if len(results) >= maxResults {
			break
		}
		if topic.Text == "" || topic.FirstURL == "" {
			continue
		}
		results = append(results, model.WebResult{
			Title:   topic.Text,
			URL:     topic.FirstURL,
			Snippet: topic.Text,
		})
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}
