// Package oauth2x runs the OAuth2 authorization-code dance for a single
// identity provider: it issues the state (and optional PKCE verifier)
// cookie, builds the authorize redirect, validates the callback, exchanges
// the code with golang.org/x/oauth2 and hands the access token to the
// provider to load a profile.
//
// Providers plug in through the Provider interface; the engine never knows
// what a profile looks like.
package oauth2x
