package auth

import (
	"context"
	"sync"

	"quotes-hq/bff/pkg/telemetry/metrics"

	"golang.org/x/oauth2"
)

// CachingProvider reuses one token per audience until it is about to
// expire, the same validity rule oauth2.ReuseTokenSource applies. It is only
// built when auth.cache_tokens is set.
type CachingProvider struct {
	fetcher Fetcher
	metrics *metrics.Collector

	mu     sync.Mutex
	tokens map[string]*oauth2.Token
}

// NewCachingProvider wraps fetcher with a per-audience cache.
func NewCachingProvider(fetcher Fetcher, collector *metrics.Collector) *CachingProvider {
	return &CachingProvider{
		fetcher: fetcher,
		metrics: collector,
		tokens:  make(map[string]*oauth2.Token),
	}
}

// Token returns a cached token for audience or fetches a new one.
func (c *CachingProvider) Token(ctx context.Context, audience string) (string, error) {
	c.mu.Lock()
	tok, ok := c.tokens[audience]
	c.mu.Unlock()

	if ok && tok.Valid() {
		c.metrics.RecordTokenCache(true)
		return tok.AccessToken, nil
	}
	c.metrics.RecordTokenCache(false)

	tok, err := c.fetcher.FetchToken(ctx, audience)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.tokens[audience] = tok
	c.mu.Unlock()

	return tok.AccessToken, nil
}

// Len returns the number of cached audiences.
func (c *CachingProvider) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tokens)
}
