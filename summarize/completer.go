package summarize

import (
	"context"
	"fmt"
	"strings"
)

// Completer sends a prompt to a language model and returns its text.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

const (
	ProviderCerebras = "cerebras"
	ProviderGemini   = "gemini"
)

type Config struct {
	Provider string         `mapstructure:"provider"`
	Cerebras CerebrasConfig `mapstructure:"cerebras"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	// Token budgets per request kind.
	SummaryMaxTokens  int `mapstructure:"summary_max_tokens"`
	InsightsMaxTokens int `mapstructure:"insights_max_tokens"`
}

func DefaultConfig() Config {
	return Config{
		Provider:          ProviderCerebras,
		Cerebras:          DefaultCerebrasConfig(),
		Gemini:            DefaultGeminiConfig(),
		SummaryMaxTokens:  200,
		InsightsMaxTokens: 300,
	}
}

// NewCompleter builds the completer named by cfg.Provider.
func NewCompleter(ctx context.Context, cfg Config) (Completer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderCerebras:
		c, err := NewCerebras(cfg.Cerebras)
		if err != nil {
			return nil, err
		}
		return c, nil
	case ProviderGemini:
		g, err := NewGemini(ctx, cfg.Gemini)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown summarizer provider %q", cfg.Provider)
	}
}
