// Package auth mints audience-bound bearer tokens for upstream calls.
//
// The audience is always the full outbound URL, so a token minted for
// https://quotes.example.run.app/quotes is never sent anywhere else. Three
// sources are available:
//
//   - idtoken: Google application default credentials
//   - metadata: the instance metadata identity endpoint
//   - static: a fixed token for local development
//
// Tokens are minted per call. Set auth.cache_tokens to reuse them per
// audience until expiry.
package auth
