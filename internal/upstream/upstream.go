// Package upstream builds the text generator backing the summarizer from
// the configured provider.
package upstream

import (
	"context"
	"fmt"
	"net/http"

	"earningscall/internal/config"
	"earningscall/internal/upstream/anthropic"
	"earningscall/internal/upstream/gemini"
	"earningscall/internal/upstream/openai"
)

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Check makes a cheap authenticated call that proves the provider is
	// reachable and the model exists.
	Check(ctx context.Context) error
	Name() string
}

func New(ctx context.Context, cfg config.Config, httpClient *http.Client) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:          cfg.APIKey,
			BaseURL:         cfg.BaseURL,
			Model:           cfg.Model,
			MaxOutputTokens: cfg.MaxOutputTokens,
			Temperature:     cfg.Temperature,
			HTTPClient:      httpClient,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:          cfg.APIKey,
			BaseURL:         cfg.BaseURL,
			Model:           cfg.Model,
			MaxOutputTokens: cfg.MaxOutputTokens,
			Temperature:     cfg.Temperature,
			HTTPClient:      httpClient,
		}), nil
	case config.ProviderAnthropic:
		return anthropic.New(anthropic.Config{
			APIKey:          cfg.APIKey,
			BaseURL:         cfg.BaseURL,
			Model:           cfg.Model,
			MaxOutputTokens: cfg.MaxOutputTokens,
			Temperature:     cfg.Temperature,
			HTTPClient:      httpClient,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
