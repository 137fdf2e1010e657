package llm

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/balkashynov/taskpilot/internal/config"
)

// NewClient builds the configured provider wrapped in the standard
// middleware chain: metrics -> logging -> timeout -> provider.
// recorder may be nil.
func NewClient(cfg config.LLMConfig, log zerolog.Logger, recorder MetricsRecorder) (Client, error) {
	var base Client
	switch cfg.Provider {
	case config.ProviderOpenAI:
		base = NewOpenAIClient(cfg.APIKey, cfg.Model)
	case config.ProviderAnthropic:
		base = NewAnthropicClient(cfg.APIKey, cfg.Model)
	case config.ProviderOllama:
		base = NewOllamaClient(cfg.BaseURL, cfg.Model, nil)
	case config.ProviderLocal:
		base = NewLocalClient()
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}

	middlewares := make([]Middleware, 0, 3)
	if recorder != nil {
		middlewares = append(middlewares, MetricsMiddleware(recorder))
	}
	middlewares = append(middlewares,
		LoggingMiddleware(log.With().Str("component", "llm").Str("provider", cfg.Provider).Logger()),
		TimeoutMiddleware(cfg.Timeout),
	)

	return Chain(base, middlewares...), nil
}
