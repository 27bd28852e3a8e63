package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCerebras_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama-4-scout-17b-16e-instruct", req.Model)
		assert.Equal(t, 200, req.MaxTokens)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "user", req.Messages[0].Role)
			assert.Equal(t, "Summarize: Cash Out -300 KES", req.Messages[0].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" You spent 300 KES. "}}]}`))
	}))
	defer server.Close()

	c, err := NewCerebras(CerebrasConfig{APIKey: "test-key", BaseURL: server.URL + "/v1/"})
	require.NoError(t, err)

	got, err := c.Complete(context.Background(), "Summarize: Cash Out -300 KES", 200)
	require.NoError(t, err)
	assert.Equal(t, "You spent 300 KES.", got)
}

func TestCerebras_LegacyTextChoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"text":"Summary: Cash Out -300 KES"}]}`))
	}))
	defer server.Close()

	c, err := NewCerebras(CerebrasConfig{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	got, err := c.Complete(context.Background(), "p", 0)
	require.NoError(t, err)
	assert.Equal(t, "Summary: Cash Out -300 KES", got)
}

func TestCerebras_ErrorPassThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid api key"}`))
	}))
	defer server.Close()

	c, err := NewCerebras(CerebrasConfig{APIKey: "bad", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "p", 10)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, `cerebras API error 401: {"message":"invalid api key"}`, err.Error())
}

func TestCerebras_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	c, err := NewCerebras(CerebrasConfig{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "p", 10)
	assert.ErrorContains(t, err, "no choices")
}

func TestNewCerebras_RequiresKey(t *testing.T) {
	_, err := NewCerebras(CerebrasConfig{})
	assert.ErrorContains(t, err, "CEREBRAS_API_KEY")
}

func TestNewCompleter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cerebras.APIKey = "k"

	c, err := NewCompleter(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &Cerebras{}, c)

	cfg.Provider = "gemini"
	_, err = NewCompleter(context.Background(), cfg)
	assert.ErrorContains(t, err, "GEMINI_API_KEY")

	cfg.Provider = "openai"
	_, err = NewCompleter(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown summarizer provider")

	cfg.Provider = "cerebras"
	cfg.Cerebras.APIKey = ""
	c, err = NewCompleter(context.Background(), cfg)
	assert.Error(t, err)
	assert.Nil(t, c)
}
