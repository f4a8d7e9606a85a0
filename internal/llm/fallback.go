package llm

import (
	"context"

	"github.com/wolfman30/salon-bot/pkg/logging"
)

// FallbackTransport retries a failed prompt on a second backend.
type FallbackTransport struct {
	primary  Transport
	fallback Transport
	logger   *logging.Logger
}

// NewFallbackTransport wraps primary. A nil fallback makes it a pass-through.
func NewFallbackTransport(primary, fallback Transport, logger *logging.Logger) *FallbackTransport {
	if primary == nil {
		panic("llm: primary transport cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackTransport{primary: primary, fallback: fallback, logger: logger}
}

func (t *FallbackTransport) SubmitPrompt(ctx context.Context, prompt string) (string, error) {
	text, err := t.primary.SubmitPrompt(ctx, prompt)
	if err == nil {
		return text, nil
	}

	t.logger.Warn("primary LLM failed, attempting fallback",
		"error", err.Error(),
		"fallback_available", t.fallback != nil,
	)
	if t.fallback == nil {
		return "", err
	}

	text, fallbackErr := t.fallback.SubmitPrompt(ctx, prompt)
	if fallbackErr != nil {
		t.logger.Error("fallback LLM also failed",
			"primary_error", err.Error(),
			"fallback_error", fallbackErr.Error(),
		)
		return "", fallbackErr
	}
	t.logger.Info("fallback LLM succeeded after primary failure")
	return text, nil
}
