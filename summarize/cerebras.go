package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type CerebrasConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func DefaultCerebrasConfig() CerebrasConfig {
	return CerebrasConfig{
		BaseURL: "https://api.cerebras.ai/v1",
		Model:   "llama-4-scout-17b-16e-instruct",
		Timeout: 60 * time.Second,
	}
}

// APIError carries a non-2xx completion response through unchanged.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cerebras API error %d: %s", e.StatusCode, e.Body)
}

// Cerebras calls the OpenAI-compatible chat completions endpoint.
type Cerebras struct {
	cfg    CerebrasConfig
	client *http.Client
}

func NewCerebras(cfg CerebrasConfig) (*Cerebras, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("cerebras: CEREBRAS_API_KEY is not set")
	}
	defaults := DefaultCerebrasConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	return &Cerebras{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
		Text    string      `json:"text"`
	} `json:"choices"`
}

func (c *Cerebras) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:     c.cfg.Model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("cerebras: encode request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("cerebras: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("cerebras: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("cerebras: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("cerebras: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("cerebras: response has no choices")
	}

	choice := parsed.Choices[0]
	if choice.Message.Content != "" {
		return strings.TrimSpace(choice.Message.Content), nil
	}
	return strings.TrimSpace(choice.Text), nil
}
