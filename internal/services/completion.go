package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"studyquiz/internal/config"
)

// ErrRateLimited marks a completion request the provider refused for quota reasons.
var ErrRateLimited = errors.New("language model rate limit reached")

// Completer sends one prompt to a hosted language model and returns its text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// ModelSettings are the generation parameters sent with every request.
type ModelSettings struct {
	Model           string
	MaxOutputTokens int
	Temperature     float64
}

// ProbeMaxOutputTokens caps the reply length of the connection check.
const ProbeMaxOutputTokens = 100

// ProbingCompleter can produce a variant of itself for short connection checks.
type ProbingCompleter interface {
	Completer
	Probe() Completer
	Close()
}

// NewCompleter builds the completer selected by the configuration.
func NewCompleter(ctx context.Context, cfg *config.Config) (ProbingCompleter, error) {
	settings := ModelSettings{
		Model:           cfg.LLMModel,
		MaxOutputTokens: cfg.MaxOutputTokens,
		Temperature:     cfg.Temperature,
	}

	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		return NewAnthropicCompleter(cfg.LLMAPIKey, settings), nil
	case config.ProviderGemini:
		g, err := NewGeminiCompleter(ctx, cfg.LLMAPIKey, settings)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported language model provider %q", cfg.LLMProvider)
	}
}

// IsRateLimited reports whether err is a classified or textual rate-limit error.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	return looksRateLimited(err.Error())
}

func looksRateLimited(msg string) bool {
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(strings.ToLower(msg), "resource has been exhausted")
}

func rateLimited(provider string, cause error) error {
	return fmt.Errorf("%s: %w: %v", provider, ErrRateLimited, cause)
}
