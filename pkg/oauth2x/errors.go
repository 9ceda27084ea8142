package oauth2x

import (
	"errors"
	"fmt"
)

var (
	ErrStateMismatch = errors.New("oauth2x: state mismatch")
	ErrMissingCode   = errors.New("oauth2x: missing authorization code")
)

// AuthorizationError is the provider redirecting back with ?error=...,
// typically access_denied when the user clicks cancel.
type AuthorizationError struct {
	Code        string
	Description string
	URI         string
}

func (e *AuthorizationError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("oauth2x: authorization failed: %s: %s", e.Code, e.Description)
	}
	return "oauth2x: authorization failed: " + e.Code
}

// ExchangeError wraps a failed code-for-token exchange. Err is often an
// *oauth2.RetrieveError.
type ExchangeError struct {
	Provider string
	Err      error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("oauth2x: %s token exchange: %v", e.Provider, e.Err)
}

func (e *ExchangeError) Unwrap() error { return e.Err }

// ProfileError wraps a failure of Provider.FetchProfile after a
// successful exchange.
type ProfileError struct {
	Provider string
	Err      error
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("oauth2x: %s profile: %v", e.Provider, e.Err)
}

func (e *ProfileError) Unwrap() error { return e.Err }
