package ai

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kassemshdy/aspire-library/internal/httperr"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

var ErrCircuitOpen = httperr.Upstream(
	"ai_unavailable",
	"The AI provider is temporarily unavailable, try again shortly.",
)

// BreakerProvider stops calling a failing provider. After maxFailures
// failures inside window it fails fast for cooldown, then lets a single
// probe through.
type BreakerProvider struct {
	next TextGenerationProvider

	maxFailures int
	window      time.Duration
	cooldown    time.Duration
	now         func() time.Time

	mu       sync.Mutex
	state    State
	failures []time.Time
	openedAt time.Time
	probing  bool
}

func NewBreakerProvider(next TextGenerationProvider, maxFailures int, window, cooldown time.Duration) *BreakerProvider {
	return &BreakerProvider{
		next:        next,
		maxFailures: maxFailures,
		window:      window,
		cooldown:    cooldown,
		now:         time.Now,
		state:       StateClosed,
	}
}

func (b *BreakerProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := b.allow(); err != nil {
		return "", err
	}

	out, err := b.next.Generate(ctx, prompt, maxTokens)
	b.record(err)
	return out, err
}

func (b *BreakerProvider) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *BreakerProvider) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return ErrCircuitOpen
		}
		b.state = StateHalfOpen
		b.probing = true
		return nil
	case StateHalfOpen:
		if b.probing {
			return ErrCircuitOpen
		}
		b.probing = true
	}
	return nil
}

func (b *BreakerProvider) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()

	if !countsAsFailure(err) {
		if b.state == StateHalfOpen {
			b.state = StateClosed
			b.failures = b.failures[:0]
		}
		b.probing = false
		b.cleanOldFailures(now)
		return
	}

	b.failures = append(b.failures, now)
	b.cleanOldFailures(now)

	if b.state == StateHalfOpen || len(b.failures) >= b.maxFailures {
		b.state = StateOpen
		b.openedAt = now
	}
	b.probing = false
}

// Business errors and caller cancellation say nothing about provider health.
func countsAsFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	return httperr.KindOf(err) == ""
}

func (b *BreakerProvider) cleanOldFailures(now time.Time) {
	cutoff := now.Add(-b.window)
	keep := b.failures[:0]
	for _, f := range b.failures {
		if f.After(cutoff) {
			keep = append(keep, f)
		}
	}
	b.failures = keep
}
