package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoperat/centumbob/internal/llm"
)

func TestComplete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  {\"price\":{}}  "},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":5}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", Model: "gpt-test"}, nil)
	out, err := c.Complete(context.Background(), "read the menu", llm.Image{Bytes: []byte("img"), MimeType: "image/png"},
		llm.CompletionOptions{JSONMode: true, MaxTokens: 2000, Temperature: 0.1})
	require.NoError(t, err)
	assert.Equal(t, `{"price":{}}`, out)

	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, 2000, got.MaxTokens)
	assert.InDelta(t, 0.1, got.Temperature, 0.0001)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 1)
	require.Len(t, got.Messages[0].Content, 2)
	assert.Equal(t, "read the menu", got.Messages[0].Content[0].Text)
	require.NotNil(t, got.Messages[0].Content[1].ImageURL)
	assert.Equal(t, "data:image/png;base64,aW1n", got.Messages[0].Content[1].ImageURL.URL)
	assert.Equal(t, "high", got.Messages[0].Content[1].ImageURL.Detail)
}

func TestComplete_NoJSONMode(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	out, err := c.Complete(context.Background(), "p", llm.Image{Bytes: []byte("x")}, llm.CompletionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	_, has := raw["response_format"]
	assert.False(t, has)
}

func TestComplete_MissingCredentials(t *testing.T) {
	c := NewClient(Config{}, nil)
	_, err := c.Complete(context.Background(), "p", llm.Image{Bytes: []byte("x")}, llm.CompletionOptions{})
	assert.ErrorIs(t, err, llm.ErrMissingCredentials)
	assert.False(t, c.HasCredentials())
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		empty  bool
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, false},
		{"no choices", http.StatusOK, `{"choices":[]}`, true},
		{"blank content", http.StatusOK, `{"choices":[{"message":{"content":"  "},"finish_reason":"length"}]}`, true},
		{"garbage", http.StatusOK, `<html>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
			_, err := c.Complete(context.Background(), "p", llm.Image{Bytes: []byte("x")}, llm.CompletionOptions{})
			require.Error(t, err)
			assert.Equal(t, tt.empty, errors.Is(err, llm.ErrEmptyResponse))
		})
	}
}

func TestComplete_RateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, RequestsPerMinute: 1}, nil)
	for i := 0; i < 2; i++ {
		_, err := c.Complete(context.Background(), "p", llm.Image{Bytes: []byte("x")}, llm.CompletionOptions{})
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Complete(ctx, "p", llm.Image{Bytes: []byte("x")}, llm.CompletionOptions{})
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}
