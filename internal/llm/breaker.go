package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

// ErrBreakerOpen is returned while the breaker rejects calls.
var ErrBreakerOpen = errors.New("llm: circuit breaker open")

// BreakerSettings tunes when a backend is considered unhealthy.
type BreakerSettings struct {
	Name                string
	ConsecutiveFailures uint32
	Cooldown            time.Duration
}

// BreakerTransport stops calling a backend after repeated failures so requests fail
// fast into the fallback reply instead of waiting on a dead endpoint.
type BreakerTransport struct {
	next Transport
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerTransport(next Transport, settings BreakerSettings, logger *logging.Logger) *BreakerTransport {
	if next == nil {
		panic("llm: breaker transport requires a backend")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	if settings.Name == "" {
		settings.Name = "llm"
	}
	threshold := settings.ConsecutiveFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     settings.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("llm circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return &BreakerTransport{next: next, cb: cb}
}

func (t *BreakerTransport) SubmitPrompt(ctx context.Context, prompt string) (string, error) {
	out, err := t.cb.Execute(func() (interface{}, error) {
		return t.next.SubmitPrompt(ctx, prompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %v", ErrBreakerOpen, err)
	}
	if err != nil {
		return "", err
	}
	text, _ := out.(string)
	return text, nil
}

// State exposes the breaker state for health reporting.
func (t *BreakerTransport) State() string {
	return t.cb.State().String()
}
