package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"go.uber.org/zap"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CachedProvider memoizes completions by prompt. Cache failures are logged
// and never fail the request.
type CachedProvider struct {
	next  TextGenerationProvider
	cache Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedProvider(next TextGenerationProvider, cache Cache, ttl time.Duration, log *zap.Logger) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, ttl: ttl, log: log}
}

func cacheKey(prompt string, maxTokens int) string {
	sum := sha256.Sum256([]byte(strconv.Itoa(maxTokens) + "\x00" + prompt))
	return "ai:" + hex.EncodeToString(sum[:])
}

func (c *CachedProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	key := cacheKey(prompt, maxTokens)

	if v, ok, err := c.cache.Get(ctx, key); err != nil {
		c.log.Warn("ai cache read failed", zap.Error(err))
	} else if ok {
		return v, nil
	}

	out, err := c.next.Generate(ctx, prompt, maxTokens)
	if err != nil {
		return "", err
	}

	if out != "" {
		if err := c.cache.Set(ctx, key, out, c.ttl); err != nil {
			c.log.Warn("ai cache write failed", zap.Error(err))
		}
	}
	return out, nil
}
