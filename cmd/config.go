package cmd

import (
	"context"

	"github.com/aqlanhadi/stmtsense/api"
	"github.com/aqlanhadi/stmtsense/extractor"
	"github.com/aqlanhadi/stmtsense/summarize"
	"github.com/spf13/viper"
)

// setDefaults seeds every non-extraction key so config files and the
// environment only need to name what they change.
func setDefaults() {
	server := api.DefaultConfig()
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.max_upload_bytes", server.MaxUploadBytes)
	viper.SetDefault("server.allowed_types", server.AllowedTypes)
	viper.SetDefault("server.allowed_origins", server.AllowedOrigins)
	viper.SetDefault("server.request_timeout", server.RequestTimeout)
	viper.SetDefault("server.rate_limit", server.RateLimit)
	viper.SetDefault("server.rate_burst", server.RateBurst)

	summarizer := summarize.DefaultConfig()
	viper.SetDefault("summarizer.provider", summarizer.Provider)
	viper.SetDefault("summarizer.summary_max_tokens", summarizer.SummaryMaxTokens)
	viper.SetDefault("summarizer.insights_max_tokens", summarizer.InsightsMaxTokens)
	viper.SetDefault("summarizer.cerebras.base_url", summarizer.Cerebras.BaseURL)
	viper.SetDefault("summarizer.cerebras.model", summarizer.Cerebras.Model)
	viper.SetDefault("summarizer.cerebras.timeout", summarizer.Cerebras.Timeout)
	viper.SetDefault("summarizer.gemini.model", summarizer.Gemini.Model)
}

func newExtractor() (*extractor.Extractor, error) {
	cfg, err := extractor.LoadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return extractor.New(cfg), nil
}

func summarizerConfig() (summarize.Config, error) {
	cfg := summarize.DefaultConfig()
	if err := viper.UnmarshalKey("summarizer", &cfg); err != nil {
		return summarize.Config{}, err
	}
	// UnmarshalKey does not see env-bound nested keys.
	cfg.Provider = viper.GetString("summarizer.provider")
	cfg.Cerebras.APIKey = viper.GetString("summarizer.cerebras.api_key")
	cfg.Gemini.APIKey = viper.GetString("summarizer.gemini.api_key")
	return cfg, nil
}

func newCompleter(ctx context.Context) (summarize.Completer, summarize.Config, error) {
	cfg, err := summarizerConfig()
	if err != nil {
		return nil, summarize.Config{}, err
	}
	completer, err := summarize.NewCompleter(ctx, cfg)
	return completer, cfg, err
}

func serverConfig() (api.Config, error) {
	cfg := api.DefaultConfig()
	if err := viper.UnmarshalKey("server", &cfg); err != nil {
		return api.Config{}, err
	}
	return cfg, nil
}
