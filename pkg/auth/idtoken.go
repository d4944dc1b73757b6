package auth

import (
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

// IDTokenProvider mints Google-signed identity tokens through application
// default credentials: a service account key file, the GOOGLE_APPLICATION_CREDENTIALS
// file, or the metadata server on Cloud Run and GCE.
type IDTokenProvider struct {
	credentialsFile string
	opts            Options
}

// NewIDTokenProvider creates an IDTokenProvider. An empty credentialsFile
// uses application default credentials.
func NewIDTokenProvider(credentialsFile string, opts Options) *IDTokenProvider {
	return &IDTokenProvider{
		credentialsFile: credentialsFile,
		opts:            opts,
	}
}

// Token returns an identity token whose aud claim is audience.
func (p *IDTokenProvider) Token(ctx context.Context, audience string) (string, error) {
	return accessToken(p.FetchToken(ctx, audience))
}

// FetchToken builds a token source for audience and fetches one token.
func (p *IDTokenProvider) FetchToken(ctx context.Context, audience string) (*oauth2.Token, error) {
	return fetch(ctx, p.opts, SourceIDToken, audience, func(ctx context.Context) (*oauth2.Token, error) {
		var clientOpts []option.ClientOption
		if p.credentialsFile != "" {
			clientOpts = append(clientOpts, option.WithCredentialsFile(p.credentialsFile))
		}

		ts, err := idtoken.NewTokenSource(ctx, audience, clientOpts...)
		if err != nil {
			return nil, err
		}
		return ts.Token()
	})
}
