package auth

import (
	"context"

	"golang.org/x/oauth2"
)

// StaticProvider returns the same token for every audience. It exists for
// local development against upstreams that do not verify the token.
type StaticProvider struct {
	source oauth2.TokenSource
	opts   Options
}

// NewStaticProvider creates a StaticProvider for token.
func NewStaticProvider(token string, opts Options) *StaticProvider {
	return &StaticProvider{
		source: oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}),
		opts: opts,
	}
}

// Token returns the static token; audience is ignored.
func (p *StaticProvider) Token(ctx context.Context, audience string) (string, error) {
	return accessToken(p.FetchToken(ctx, audience))
}

// FetchToken returns the static token with no expiry.
func (p *StaticProvider) FetchToken(ctx context.Context, audience string) (*oauth2.Token, error) {
	return fetch(ctx, p.opts, SourceStatic, audience, func(context.Context) (*oauth2.Token, error) {
		return p.source.Token()
	})
}
