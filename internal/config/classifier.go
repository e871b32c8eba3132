package config

import (
	"fmt"
	"os"
	"time"
)

// ClassifierConfig holds model selection and per-call timeouts for the
// LLM-backed classifiers of §4.4 and the entity normalizer of §4.6.
type ClassifierConfig struct {
	// AnthropicAPIKey authenticates the CORRUPTION classifier and the
	// normalizer's batch call. Loaded from ANTHROPIC_API_KEY.
	AnthropicAPIKey string

	// AnthropicModel is the configured Claude model identifier.
	// Default: claude-sonnet-4-5-20250929. The CORRUPTION classifier and
	// the normalizer do not read it; each uses its own model constant.
	AnthropicModel string

	// OpenAIAPIKey authenticates the HURRICANE_RELIEF classifier.
	// Loaded from OPENAI_API_KEY.
	OpenAIAPIKey string

	// OpenAIModel is the configured chat-completions model identifier.
	// Default: gpt-4o-mini. The HURRICANE_RELIEF classifier does not
	// read it; it uses its own model constant.
	OpenAIModel string

	// CallTimeout is the configured per-call timeout. Default: 60s.
	// The classifiers and the normalizer do not read it; each sets its
	// own timeout.
	CallTimeout time.Duration

	// MaxTokens is the configured response-size bound. Default: 1024.
	// The classifiers and the normalizer do not read it; each sets its
	// own limit.
	MaxTokens int
}

// DefaultClassifierConfig returns defaults matching the teacher's
// ClaudeConfig shape (internal/infra/summarizer/claude.go).
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		AnthropicModel: "claude-sonnet-4-5-20250929",
		OpenAIModel:    "gpt-4o-mini",
		CallTimeout:    60 * time.Second,
		MaxTokens:      1024,
	}
}

// LoadClassifierConfig reads API keys and model overrides from the
// environment.
func LoadClassifierConfig() (ClassifierConfig, error) {
	cfg := DefaultClassifierConfig()
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if v := os.Getenv("ANTHROPIC_MODEL"); v != "" {
		cfg.AnthropicModel = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.OpenAIModel = v
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate requires at least one provider to be configured; a
// deployment with neither key set has nothing to classify with.
func (c ClassifierConfig) Validate() error {
	if c.AnthropicAPIKey == "" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("at least one of ANTHROPIC_API_KEY or OPENAI_API_KEY must be set")
	}
	return nil
}
