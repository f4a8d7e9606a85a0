package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiTransport calls a base Gemini model through the Generative Language API.
type GeminiTransport struct {
	client      *genai.Client
	modelID     string
	temperature float32
	maxTokens   int32
}

// NewGeminiTransport creates a client authenticated with an API key.
func NewGeminiTransport(ctx context.Context, apiKey, modelID string, temperature float32, maxTokens int32) (*GeminiTransport, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("llm: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("llm: failed to create gemini client: %w", err)
	}
	return &GeminiTransport{
		client:      client,
		modelID:     modelID,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

func (t *GeminiTransport) SubmitPrompt(ctx context.Context, prompt string) (string, error) {
	model := t.client.GenerativeModel(t.modelID)
	if t.temperature >= 0 {
		model.SetTemperature(t.temperature)
	}
	if t.maxTokens > 0 {
		model.SetMaxOutputTokens(t.maxTokens)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("llm: gemini completion failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("llm: gemini returned no candidates")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", ErrEmptyResponse
	}
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// Close releases the underlying gRPC connection.
func (t *GeminiTransport) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}
