package upstreamtest

import (
	"context"
	"sync"
)

// Tokens is an auth.Provider that mints "token-for:<audience>" and records
// every audience it was asked for.
type Tokens struct {
	mu        sync.Mutex
	audiences []string

	// Err, when set, is returned instead of a token.
	Err error
}

// Token records audience and returns a token derived from it.
func (t *Tokens) Token(ctx context.Context, audience string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.audiences = append(t.audiences, audience)
	if t.Err != nil {
		return "", t.Err
	}
	return TokenFor(audience), nil
}

// Audiences returns every audience requested so far.
func (t *Tokens) Audiences() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]string(nil), t.audiences...)
}

// TokenFor returns the token Tokens mints for audience.
func TokenFor(audience string) string {
	return "token-for:" + audience
}

// BearerFor returns the Authorization header value for audience.
func BearerFor(audience string) string {
	return "Bearer " + TokenFor(audience)
}
