package llm

import (
	"context"
	"fmt"

	"loglens/internal/config"
)

// NewRegistryFromConfig builds the provider adapters that have
// credentials configured and wraps them in a registry carrying the
// configured defaults and static fallback lists. At least one provider
// must be configured.
func NewRegistryFromConfig(ctx context.Context, cfg config.LLMConfig) (*Registry, error) {
	var providers []Provider

	if cfg.Gemini.APIKey != "" {
		gemini, err := NewGeminiProvider(ctx, GeminiConfig{APIKey: cfg.Gemini.APIKey})
		if err != nil {
			return nil, fmt.Errorf("gemini provider: %w", err)
		}
		providers = append(providers, gemini)
	}
	if cfg.OpenAI.APIKey != "" {
		providers = append(providers, NewOpenAIProvider(OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
		}))
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("no LLM provider configured: set GEMINI_API_KEY or OPENAI_API_KEY")
	}

	return NewRegistry(RegistryConfig{
		DefaultModel: map[ProviderID]string{
			ProviderGemini: cfg.Gemini.DefaultModel,
			ProviderOpenAI: cfg.OpenAI.DefaultModel,
		},
		StaticModels: map[ProviderID][]string{
			ProviderGemini: cfg.Gemini.FallbackModels,
			ProviderOpenAI: cfg.OpenAI.FallbackModels,
		},
	}, providers...), nil
}
