package writewise

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/xostack/writewise/config"
	"github.com/xostack/writewise/gemini"
	"github.com/xostack/writewise/groq"
	"github.com/xostack/writewise/ollama"
)

// GetClient returns a client for cfg.DefaultProvider bound to a single credential.
//
// Supported providers:
//   - "gemini": Google Gemini (credential required)
//   - "groq": Groq (credential required)
//   - "ollama": Ollama (requires BaseURL; credential optional)
//
// It is a variable so tests can substitute a fake provider.
var GetClient func(cfg config.Config, credential string, logger zerolog.Logger) (Client, error) = func(cfg config.Config, credential string, logger zerolog.Logger) (Client, error) {
	providerName := cfg.DefaultProvider
	if providerName == "" {
		return nil, fmt.Errorf("no default LLM provider specified in configuration")
	}

	llmCfg, exists := cfg.LLMs[providerName]
	if !exists {
		return nil, fmt.Errorf("configuration for provider '%s' not found", providerName)
	}

	requestTimeout := cfg.RequestTimeout()
	logger = logger.With().Str("provider", providerName).Logger()

	switch providerName {
	case config.ProviderGemini:
		if credential == "" {
			return nil, fmt.Errorf("API key for Gemini not found in configuration")
		}
		client, err := gemini.NewClient(context.Background(), credential, llmCfg.Model, llmCfg.JSONResponse, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderOllama:
		if llmCfg.BaseURL == "" {
			return nil, fmt.Errorf("base URL for Ollama not found in configuration")
		}
		client, err := ollama.NewClient(context.Background(), llmCfg.BaseURL, credential, llmCfg.Model, llmCfg.JSONResponse, requestTimeout, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderGroq:
		if credential == "" {
			return nil, fmt.Errorf("API key for Groq not found in configuration")
		}
		client, err := groq.NewClient(credential, llmCfg.BaseURL, llmCfg.Model, llmCfg.JSONResponse, requestTimeout, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerName)
	}
}
