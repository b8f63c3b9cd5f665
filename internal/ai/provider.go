package ai

import (
	"context"

	"github.com/kassemshdy/aspire-library/internal/httperr"
)

// TextGenerationProvider turns a prompt into model text. Implementations
// return business errors for conditions callers should see as-is.
type TextGenerationProvider interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

var ErrNotConfigured = httperr.Unavailable(
	"ai_not_configured",
	"AI features are not configured. Set AI_API_KEY to a valid Anthropic key (sk-ant-...).",
)

// Unconfigured is used when no API key is available.
type Unconfigured struct{}

func (Unconfigured) Generate(context.Context, string, int) (string, error) {
	return "", ErrNotConfigured
}

// Observer receives one outcome per advisor call.
type Observer interface {
	ObserveAI(operation, outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveAI(string, string) {}

const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)
