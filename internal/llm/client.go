package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

// Config selects and tunes the backend.
type Config struct {
	Provider         string
	FallbackProvider string
	Timeout          time.Duration
	Temperature      float32
	MaxTokens        int32

	GeminiAPIKey   string
	GeminiModel    string
	TunedModelName string
	VertexLocation string
	BedrockModelID string
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string

	BreakerEnabled  bool
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Deps are the shared clients a backend may need.
type Deps struct {
	AWS      *aws.Config
	Logger   *logging.Logger
	Observer LatencyObserver
}

// Client is the configured transport stack.
type Client struct {
	provider  string
	transport Transport
	closers   []func() error
}

// ResolveProvider returns the explicit provider, or infers one: a tuned model name
// selects Vertex, otherwise the base Gemini model is used.
func ResolveProvider(cfg Config) string {
	if p := strings.ToLower(strings.TrimSpace(cfg.Provider)); p != "" {
		return p
	}
	if strings.TrimSpace(cfg.TunedModelName) != "" {
		return ProviderVertex
	}
	return ProviderGemini
}

// New builds the primary backend (plus breaker, timeout and optional fallback).
func New(ctx context.Context, cfg Config, deps Deps) (*Client, error) {
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	c := &Client{provider: ResolveProvider(cfg)}

	primary, err := c.build(ctx, c.provider, cfg, deps)
	if err != nil {
		return nil, err
	}
	var transport Transport = primary
	if cfg.BreakerEnabled {
		transport = NewBreakerTransport(transport, BreakerSettings{
			Name:                c.provider,
			ConsecutiveFailures: cfg.BreakerFailures,
			Cooldown:            cfg.BreakerCooldown,
		}, deps.Logger)
	}
	transport = WithTimeout(transport, cfg.Timeout)

	fallbackName := strings.ToLower(strings.TrimSpace(cfg.FallbackProvider))
	if fallbackName != "" && fallbackName != c.provider {
		fallback, err := c.build(ctx, fallbackName, cfg, deps)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("llm: fallback provider: %w", err)
		}
		transport = NewFallbackTransport(transport, WithTimeout(fallback, cfg.Timeout), deps.Logger)
	}

	c.transport = transport
	return c, nil
}

func (c *Client) build(ctx context.Context, provider string, cfg Config, deps Deps) (Transport, error) {
	var (
		t   Transport
		err error
	)
	switch provider {
	case ProviderGemini:
		var g *GeminiTransport
		g, err = NewGeminiTransport(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Temperature, cfg.MaxTokens)
		if err == nil {
			c.closers = append(c.closers, g.Close)
			t = g
		}
	case ProviderVertex:
		t, err = NewVertexTransport(ctx, cfg.TunedModelName, cfg.VertexLocation, cfg.Temperature, cfg.MaxTokens)
	case ProviderBedrock:
		if deps.AWS == nil {
			return nil, errors.New("llm: bedrock requires aws config")
		}
		t, err = NewBedrockTransport(bedrockruntime.NewFromConfig(*deps.AWS), cfg.BedrockModelID, cfg.Temperature, cfg.MaxTokens)
	case ProviderOpenAI:
		t, err = NewOpenAITransport(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.Temperature, int(cfg.MaxTokens))
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", provider)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(t, provider, deps.Observer), nil
}

// Provider names the primary backend.
func (c *Client) Provider() string {
	return c.provider
}

// Tuned reports whether the primary backend is a fine-tuned model that expects the
// customer's text without an instruction wrapper.
func (c *Client) Tuned() bool {
	return c.provider == ProviderVertex
}

func (c *Client) SubmitPrompt(ctx context.Context, prompt string) (string, error) {
	return c.transport.SubmitPrompt(ctx, prompt)
}

// Close releases backend connections.
func (c *Client) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
