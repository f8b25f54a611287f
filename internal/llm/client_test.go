package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-labs/aria-server/internal/model"
)

func TestGenerateRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mistral", req.Model)
		assert.Equal(t, "hello", req.Prompt)
		assert.False(t, req.Stream)

		_ = json.NewEncoder(w).Encode(generateResponse{
			Response:  "hi there",
			EvalCount: 12,
			Done:      true,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "mistral", "codellama", 5*time.Second)
	res, err := c.Generate(context.Background(), Request{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hi there", res.Text)
	assert.Equal(t, 12, res.TokensUsed)
	assert.Equal(t, "mistral", res.Model)
}

func TestGenerateModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "mistral", "codellama", 5*time.Second)
	_, err := c.Generate(context.Background(), Request{Prompt: "hello"})
	assert.True(t, errors.Is(err, model.ErrModelMissing))
}

func TestGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "mistral", "codellama", 5*time.Second)
	_, err := c.Generate(context.Background(), Request{Prompt: "hello"})
	assert.True(t, errors.Is(err, model.ErrUnavailable))
}

func TestGenerateCodeUsesCodeModel(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "code"})
	}))
	defer srv.Close()

	c := New(srv.URL, "mistral", "codellama", 5*time.Second)
	_, err := c.GenerateCode(context.Background(), "write a loop", "go", "package main")
	require.NoError(t, err)
	assert.Equal(t, "codellama", got.Model)
	assert.Contains(t, got.Prompt, "package main")
	assert.Contains(t, got.System, "go")
	assert.InDelta(t, 0.3, got.Options.Temperature, 1e-9)
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[{"name":"mistral"},{"name":"codellama"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "mistral", "codellama", 5*time.Second)
	names, err := c.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"mistral", "codellama"}, names)

	assert.NoError(t, c.HealthPing(context.Background()))
}
