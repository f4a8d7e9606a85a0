// Package llm submits prompts to a language model. Backends (Gemini, tuned Vertex
// models, Bedrock, OpenAI) are chosen once at construction time and all look the same
// to callers: prompt in, raw text out.
package llm

import (
	"context"
	"errors"
	"time"
)

// Transport sends a single prompt and returns the model's raw text.
type Transport interface {
	SubmitPrompt(ctx context.Context, prompt string) (string, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, prompt string) (string, error)

func (f TransportFunc) SubmitPrompt(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ErrEmptyResponse is returned when a backend answers without any text.
var ErrEmptyResponse = errors.New("llm: empty response")

const (
	ProviderGemini  = "gemini"
	ProviderVertex  = "vertex"
	ProviderBedrock = "bedrock"
	ProviderOpenAI  = "openai"
)

// LatencyObserver receives one observation per prompt.
type LatencyObserver interface {
	ObserveLLM(provider string, elapsed time.Duration, err error)
}

type instrumented struct {
	next     Transport
	provider string
	observer LatencyObserver
	now      func() time.Time
}

// Instrument reports the latency and outcome of every call to observer.
func Instrument(next Transport, provider string, observer LatencyObserver) Transport {
	if observer == nil {
		return next
	}
	return &instrumented{next: next, provider: provider, observer: observer, now: time.Now}
}

func (t *instrumented) SubmitPrompt(ctx context.Context, prompt string) (string, error) {
	start := t.now()
	text, err := t.next.SubmitPrompt(ctx, prompt)
	t.observer.ObserveLLM(t.provider, t.now().Sub(start), err)
	return text, err
}

type timeoutTransport struct {
	next    Transport
	timeout time.Duration
}

// WithTimeout bounds every call with its own deadline.
func WithTimeout(next Transport, timeout time.Duration) Transport {
	if timeout <= 0 {
		return next
	}
	return &timeoutTransport{next: next, timeout: timeout}
}

func (t *timeoutTransport) SubmitPrompt(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.SubmitPrompt(ctx, prompt)
}
