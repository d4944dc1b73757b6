package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/compute/metadata"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// MetadataProvider reads identity tokens directly from the instance metadata
// server. It honors GCE_METADATA_HOST, which tests point at a fake server.
type MetadataProvider struct {
	client *metadata.Client
	opts   Options
}

// NewMetadataProvider creates a MetadataProvider that talks to the metadata
// server through opts.HTTPClient.
func NewMetadataProvider(opts Options) *MetadataProvider {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &MetadataProvider{
		client: metadata.NewClient(httpClient),
		opts:   opts,
	}
}

// Token returns an identity token whose aud claim is audience.
func (p *MetadataProvider) Token(ctx context.Context, audience string) (string, error) {
	return accessToken(p.FetchToken(ctx, audience))
}

// FetchToken fetches a token from the default service account's identity
// endpoint. The expiry is read from the token's exp claim when present.
func (p *MetadataProvider) FetchToken(ctx context.Context, audience string) (*oauth2.Token, error) {
	return fetch(ctx, p.opts, SourceMetadata, audience, func(ctx context.Context) (*oauth2.Token, error) {
		suffix := "instance/service-accounts/default/identity?audience=" + url.QueryEscape(audience) + "&format=full"

		raw, err := p.client.GetWithContext(ctx, suffix)
		if err != nil {
			return nil, err
		}

		tok := &oauth2.Token{
			AccessToken: strings.TrimSpace(raw),
			TokenType:   "Bearer",
		}
		if payload, err := idtoken.ParsePayload(tok.AccessToken); err == nil && payload.Expires > 0 {
			tok.Expiry = time.Unix(payload.Expires, 0)
		} else {
			// Unknown lifetime: mark it already expired so a cache never reuses it.
			tok.Expiry = time.Now()
		}
		return tok, nil
	})
}
