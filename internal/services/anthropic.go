package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicCompleter struct {
	client   *anthropic.Client
	settings ModelSettings
}

func NewAnthropicCompleter(apiKey string, settings ModelSettings) *AnthropicCompleter {
	// Retries stay with the generator so a rate limit is retried exactly once.
	client := anthropic.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(0))
	return &AnthropicCompleter{
		client:   &client,
		settings: settings,
	}
}

func (a *AnthropicCompleter) Name() string {
	return "anthropic/" + a.settings.Model
}

func (a *AnthropicCompleter) Probe() Completer {
	settings := a.settings
	settings.MaxOutputTokens = ProbeMaxOutputTokens
	return &AnthropicCompleter{client: a.client, settings: settings}
}

func (a *AnthropicCompleter) Close() {}

func (a *AnthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.settings.Model),
		MaxTokens:   int64(a.settings.MaxOutputTokens),
		Temperature: anthropic.Float(a.settings.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classifyAnthropicError(err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(tb.Text)
		}
	}
	return text.String(), nil
}

func classifyAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return rateLimited("anthropic", err)
	}
	if looksRateLimited(err.Error()) {
		return rateLimited("anthropic", err)
	}
	return fmt.Errorf("Anthropic API error: %w", err)
}
