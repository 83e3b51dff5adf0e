package ai_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tahmid/codefix/internal/ai"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewClient(t *testing.T) {
	t.Run("requires an API key", func(t *testing.T) {
		_, err := ai.NewClient(ai.Config{}, testLogger())
		assert.Error(t, err)
	})

	t.Run("accepts a key with defaults", func(t *testing.T) {
		c, err := ai.NewClient(ai.Config{APIKey: "k"}, testLogger())
		assert.NoError(t, err)
		assert.NotNil(t, c)
	})
}

func TestComplete(t *testing.T) {
	t.Run("sends the prompt and returns the first choice", func(t *testing.T) {
		var captured struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"summary\":\"s\"}"}}]}`))
		}))
		defer srv.Close()

		c, err := ai.NewClient(ai.Config{APIKey: "test-key", BaseURL: srv.URL, Model: "test-model"}, testLogger())
		assert.NoError(t, err)

		out, err := c.Complete(context.Background(), "diagnose this")
		assert.NoError(t, err)
		assert.Equal(t, `{"summary":"s"}`, out)

		assert.Equal(t, "test-model", captured.Model)
		assert.Len(t, captured.Messages, 2)
		assert.Equal(t, "system", captured.Messages[0].Role)
		assert.Equal(t, "diagnose this", captured.Messages[1].Content)
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		c, err := ai.NewClient(ai.Config{APIKey: "k", BaseURL: srv.URL}, testLogger())
		assert.NoError(t, err)

		_, err = c.Complete(context.Background(), "x")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		c, err := ai.NewClient(ai.Config{APIKey: "k", BaseURL: srv.URL}, testLogger())
		assert.NoError(t, err)

		_, err = c.Complete(context.Background(), "x")
		assert.Error(t, err)
	})
}
