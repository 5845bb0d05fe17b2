// Package adapters connects the decision engine to external reasoning
// providers.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiReasoner generates PSD3 assessments with the Gemini API.
type GeminiReasoner struct {
	client *genai.Client
	model  string
}

// NewGeminiReasoner creates a client for apiKey. An empty model uses the
// default.
func NewGeminiReasoner(ctx context.Context, apiKey, model string) (*GeminiReasoner, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiReasoner{client: client, model: model}, nil
}

// Generate sends prompt and returns the trimmed text of the first candidate.
func (g *GeminiReasoner) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}
