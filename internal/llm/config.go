package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Provider names accepted by Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Providers lists the selectable provider names.
var Providers = []string{ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter, ProviderMock}

// Config selects and configures the LLM provider used for game generation.
type Config struct {
	Provider string `env:"KIDQUEST_LLM_PROVIDER" envDefault:"anthropic"`

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration `env:"KIDQUEST_LLM_TIMEOUT" envDefault:"60s"`
}

type AnthropicConfig struct {
	APIKey  string `env:"KIDQUEST_ANTHROPIC_API_KEY"`
	Model   string `env:"KIDQUEST_ANTHROPIC_MODEL" envDefault:"claude-haiku"`
	BaseURL string `env:"KIDQUEST_ANTHROPIC_BASE_URL"`
}

type OpenAIConfig struct {
	APIKey  string `env:"KIDQUEST_OPENAI_API_KEY"`
	Model   string `env:"KIDQUEST_OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	BaseURL string `env:"KIDQUEST_OPENAI_BASE_URL"` // any OpenAI-compatible endpoint
}

type GeminiConfig struct {
	APIKey string `env:"KIDQUEST_GEMINI_API_KEY"`
	Model  string `env:"KIDQUEST_GEMINI_MODEL" envDefault:"gemini-flash"`
}

type OpenRouterConfig struct {
	APIKey  string `env:"KIDQUEST_OPENROUTER_API_KEY"`
	Model   string `env:"KIDQUEST_OPENROUTER_MODEL" envDefault:"google/gemini-2.0-flash-001"`
	BaseURL string `env:"KIDQUEST_OPENROUTER_BASE_URL"`
}

// RetryConfig tunes backoff for transient provider failures.
type RetryConfig struct {
	MaxAttempts int           `env:"KIDQUEST_LLM_RETRY_ATTEMPTS" envDefault:"3"`
	InitialWait time.Duration `env:"KIDQUEST_LLM_RETRY_INITIAL_WAIT" envDefault:"1s"`
	MaxWait     time.Duration `env:"KIDQUEST_LLM_RETRY_MAX_WAIT" envDefault:"10s"`
	Multiplier  float64       `env:"KIDQUEST_LLM_RETRY_MULTIPLIER" envDefault:"2"`
}

// DefaultConfig returns the configuration used when no environment
// variables are set.
func DefaultConfig() Config {
	var cfg Config
	// Defaults only; an empty environment cannot fail to parse.
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	return cfg
}

// ConfigFromEnv reads KIDQUEST_* variables over the defaults.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse LLM config: %w", err)
	}
	return cfg, nil
}

// DiscoverConfig looks for the vendors' own API key variables, in the
// order Gemini, OpenAI, Anthropic, OpenRouter, and selects the first
// provider whose key is set.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	switch {
	case os.Getenv("GEMINI_API_KEY") != "":
		cfg.Provider, cfg.Gemini.APIKey = ProviderGemini, os.Getenv("GEMINI_API_KEY")
	case os.Getenv("OPENAI_API_KEY") != "":
		cfg.Provider, cfg.OpenAI.APIKey = ProviderOpenAI, os.Getenv("OPENAI_API_KEY")
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		cfg.Provider, cfg.Anthropic.APIKey = ProviderAnthropic, os.Getenv("ANTHROPIC_API_KEY")
	case os.Getenv("OPENROUTER_API_KEY") != "":
		cfg.Provider, cfg.OpenRouter.APIKey = ProviderOpenRouter, os.Getenv("OPENROUTER_API_KEY")
	default:
		return Config{}, false
	}
	return cfg, true
}

// Resolve returns the explicit KIDQUEST_* configuration when its provider
// has a key, falling back to DiscoverConfig.
func Resolve() (Config, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return Config{}, err
	}
	if cfg.Validate() == nil {
		return cfg, nil
	}
	if found, ok := DiscoverConfig(); ok {
		return found, nil
	}
	return cfg, cfg.Validate()
}

// Validate checks that the selected provider has what it needs.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("KIDQUEST_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("KIDQUEST_OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("KIDQUEST_GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("KIDQUEST_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
