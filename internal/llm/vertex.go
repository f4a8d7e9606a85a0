package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// VertexTransport calls a tuned model through Vertex AI generateContent. The HTTP
// client carries application default credentials.
type VertexTransport struct {
	httpClient  *http.Client
	endpoint    string
	temperature float32
	maxTokens   int32
}

// NewVertexTransport builds an OAuth-authenticated client for the tuned model
// resource name (projects/.../endpoints/...).
func NewVertexTransport(ctx context.Context, modelName, location string, temperature float32, maxTokens int32, opts ...option.ClientOption) (*VertexTransport, error) {
	if strings.TrimSpace(modelName) == "" {
		return nil, errors.New("llm: tuned model name is required")
	}
	opts = append([]option.ClientOption{option.WithScopes(cloudPlatformScope)}, opts...)
	httpClient, _, err := htransport.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("llm: failed to create vertex http client: %w", err)
	}
	return NewVertexTransportWithClient(httpClient, vertexEndpoint(location, modelName), temperature, maxTokens), nil
}

// NewVertexTransportWithClient uses a caller-supplied client and full endpoint URL.
func NewVertexTransportWithClient(httpClient *http.Client, endpoint string, temperature float32, maxTokens int32) *VertexTransport {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return &VertexTransport{
		httpClient:  httpClient,
		endpoint:    endpoint,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func vertexEndpoint(location, modelName string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		location = "us-central1"
	}
	return fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1/%s:generateContent", location, strings.TrimPrefix(modelName, "/"))
}

type vertexPart struct {
	Text string `json:"text"`
}

type vertexContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []vertexPart `json:"parts"`
}

type vertexGenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int32   `json:"maxOutputTokens"`
}

type vertexRequest struct {
	Contents         []vertexContent        `json:"contents"`
	GenerationConfig vertexGenerationConfig `json:"generationConfig"`
}

type vertexResponse struct {
	Candidates []struct {
		Content vertexContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

func (t *VertexTransport) SubmitPrompt(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(vertexRequest{
		Contents: []vertexContent{{Role: "user", Parts: []vertexPart{{Text: prompt}}}},
		GenerationConfig: vertexGenerationConfig{
			Temperature:     t.temperature,
			MaxOutputTokens: t.maxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm: marshal vertex request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: create vertex request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: vertex request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("llm: read vertex response: %w", err)
	}

	var parsed vertexResponse
	decodeErr := json.Unmarshal(raw, &parsed)
	if resp.StatusCode >= 300 {
		if decodeErr == nil && parsed.Error != nil {
			return "", fmt.Errorf("llm: vertex error %d %s: %s", parsed.Error.Code, parsed.Error.Status, parsed.Error.Message)
		}
		return "", fmt.Errorf("llm: vertex returned status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("llm: decode vertex response: %w", decodeErr)
	}
	if len(parsed.Candidates) == 0 {
		return "", errors.New("llm: vertex returned no candidates")
	}

	var text strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
