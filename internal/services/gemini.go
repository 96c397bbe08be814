package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type GeminiCompleter struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	settings ModelSettings
	owner    bool
}

func NewGeminiCompleter(ctx context.Context, apiKey string, settings ModelSettings) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiCompleter{
		client:   client,
		model:    newGeminiModel(client, settings),
		settings: settings,
		owner:    true,
	}, nil
}

func newGeminiModel(client *genai.Client, settings ModelSettings) *genai.GenerativeModel {
	model := client.GenerativeModel(settings.Model)
	model.SetMaxOutputTokens(int32(settings.MaxOutputTokens))
	model.SetTemperature(float32(settings.Temperature))
	return model
}

func (g *GeminiCompleter) Name() string {
	return "gemini/" + g.settings.Model
}

// Probe returns a completer sharing this client with a short reply budget.
func (g *GeminiCompleter) Probe() Completer {
	settings := g.settings
	settings.MaxOutputTokens = ProbeMaxOutputTokens
	return &GeminiCompleter{
		client:   g.client,
		model:    newGeminiModel(g.client, settings),
		settings: settings,
	}
}

func (g *GeminiCompleter) Close() {
	if g.owner {
		g.client.Close()
	}
}

func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyGeminiError(err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop && cand.FinishReason != genai.FinishReasonMaxTokens {
			log.Printf("WARNING: Gemini candidate %d stopped due to %s", i, cand.FinishReason)
		}
	}

	return extractText(resp), nil
}

func classifyGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return rateLimited("gemini", err)
	}
	if looksRateLimited(err.Error()) {
		return rateLimited("gemini", err)
	}
	return fmt.Errorf("Gemini API error: %w", err)
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
