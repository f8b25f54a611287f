package research

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-labs/aria-server/internal/model"
)

func TestDuckDuckGoSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(`{
			"Heading": "Go (programming language)",
			"AbstractText": "Go is a statically typed language.",
			"AbstractURL": "https://en.wikipedia.org/wiki/Go",
			"AbstractSource": "Wikipedia",
			"RelatedTopics": [
				{"Text": "Goroutines", "FirstURL": "https://go.dev/tour"},
				{"Text": "", "FirstURL": "https://skip.me"},
				{"Text": "Channels", "FirstURL": "https://go.dev/ref"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewDuckDuckGoClient(srv.URL, 5*time.Second)
	results, err := c.Search(context.Background(), "golang", 5)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "Go (programming language)", results[0].Title)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Go", results[0].URL)
	assert.Equal(t, "Goroutines", results[1].Title)
	assert.Equal(t, "Channels", results[2].Title)
}

func TestDuckDuckGoCapsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"AbstractText": "abstract",
			"AbstractURL": "https://a",
			"AbstractSource": "src",
			"RelatedTopics": [
				{"Text": "one", "FirstURL": "https://1"},
				{"Text": "two", "FirstURL": "https://2"},
				{"Text": "three", "FirstURL": "https://3"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewDuckDuckGoClient(srv.URL, 5*time.Second)
	results, err := c.Search(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestDuckDuckGoServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewDuckDuckGoClient(srv.URL, 5*time.Second)
	_, err := c.Search(context.Background(), "q", 5)
	assert.True(t, errors.Is(err, model.ErrUnavailable))
}

func TestDuckDuckGoEmptyAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"AbstractText": "", "RelatedTopics": []}`))
	}))
	defer srv.Close()

	c := NewDuckDuckGoClient(srv.URL, 5*time.Second)
	results, err := c.Search(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
