package oauth2x

import (
	"context"

	"golang.org/x/oauth2"
)

// AuthorizeOptions customise a single authorization request.
type AuthorizeOptions struct {
	// Scopes replaces the configured scopes when non-empty.
	Scopes []string

	// Extra carries per-request provider parameters (for example "prompt").
	// Providers decide which keys they honour.
	Extra map[string]string
}

// Provider is what a concrete identity provider contributes to the engine.
type Provider[P any] interface {
	Name() string

	// OAuth2Config returns client credentials, endpoints, redirect URL and
	// default scopes.
	OAuth2Config() *oauth2.Config

	// ScopeSeparator joins scopes in the authorize URL.
	ScopeSeparator() string

	// AuthorizationParams returns extra query parameters for the authorize URL.
	AuthorizationParams(AuthorizeOptions) map[string]string

	// FetchProfile loads the user behind accessToken.
	FetchProfile(ctx context.Context, accessToken string) (P, error)
}
