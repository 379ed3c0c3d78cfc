package llm

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/abhisek/kidquest/internal/store"
)

// NewProvider builds the configured provider wrapped as
// caller → tracing → retry → logging → provider, so every attempt is
// recorded and the span covers the whole call.
func NewProvider(ctx context.Context, cfg Config, repo store.EventRepo, logger hclog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger = logger.Named("llm")

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	p := WithLogging(base, repo, logger)
	p = WithRetry(p, cfg.Retry, logger)
	return WithTracing(p), nil
}
