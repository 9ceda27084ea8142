package oauth2x

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/marabinga/passport-dc/pkg/cryptox"
	"github.com/marabinga/passport-dc/pkg/slogx"
	"golang.org/x/oauth2"
)

const defaultStateTTL = 10 * time.Minute

// Options configure an Engine.
type Options struct {
	// HTTPClient is used for the token exchange. Nil means http.DefaultClient.
	HTTPClient *http.Client

	Logger *slog.Logger

	// StateCookieName defaults to "oauth_state_<provider>".
	StateCookieName string

	// StateTTL bounds how long a user may sit on the consent screen.
	StateTTL time.Duration

	SecureCookies bool

	// PKCE adds an S256 code challenge to the authorize URL and sends the
	// verifier with the exchange.
	PKCE bool
}

// Result is a completed login.
type Result[P any] struct {
	Token   *oauth2.Token
	Profile P

	// Scopes actually granted, as reported by the token endpoint. Falls
	// back to the requested scopes when the endpoint omits them.
	Scopes []string
}

// Engine drives the authorization-code flow for one provider.
type Engine[P any] struct {
	provider Provider[P]
	cfg      *oauth2.Config
	opts     Options
	logger   *slog.Logger
}

func New[P any](provider Provider[P], opts Options) *Engine[P] {
	if opts.StateCookieName == "" {
		opts.StateCookieName = "oauth_state_" + provider.Name()
	}
	if opts.StateTTL <= 0 {
		opts.StateTTL = defaultStateTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slogx.Discard()
	}
	return &Engine[P]{
		provider: provider,
		cfg:      provider.OAuth2Config(),
		opts:     opts,
		logger:   logger.With("provider", provider.Name()),
	}
}

// AuthCodeURL builds the authorize URL for state. The scope parameter is
// joined with the provider separator rather than x/oauth2's fixed space.
func (e *Engine[P]) AuthCodeURL(state string, ao AuthorizeOptions, extra ...oauth2.AuthCodeOption) string {
	scopes := e.cfg.Scopes
	if len(ao.Scopes) > 0 {
		scopes = ao.Scopes
	}

	params := make([]oauth2.AuthCodeOption, 0, len(extra)+4)
	if len(scopes) > 0 {
		params = append(params, oauth2.SetAuthURLParam("scope", strings.Join(scopes, e.provider.ScopeSeparator())))
	}
	for k, v := range e.provider.AuthorizationParams(ao) {
		params = append(params, oauth2.SetAuthURLParam(k, v))
	}
	params = append(params, extra...)

	return e.cfg.AuthCodeURL(state, params...)
}

// BeginAuth sets the state cookie and returns the URL to redirect the user to.
func (e *Engine[P]) BeginAuth(w http.ResponseWriter, r *http.Request, ao AuthorizeOptions) (string, error) {
	state, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", err
	}

	cookieValue := state
	var extra []oauth2.AuthCodeOption
	if e.opts.PKCE {
		verifier := oauth2.GenerateVerifier()
		cookieValue = state + "." + verifier
		extra = append(extra, oauth2.S256ChallengeOption(verifier))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     e.opts.StateCookieName,
		Value:    cookieValue,
		Path:     "/",
		MaxAge:   int(e.opts.StateTTL.Seconds()),
		HttpOnly: true,
		Secure:   e.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	slogx.FromContext(r.Context()).Debug("authorization started", "provider", e.provider.Name())
	return e.AuthCodeURL(state, ao, extra...), nil
}

// Complete validates the callback request, exchanges the code and fetches
// the profile. The state cookie is cleared whatever the outcome.
func (e *Engine[P]) Complete(w http.ResponseWriter, r *http.Request) (*Result[P], error) {
	ctx := r.Context()
	q := r.URL.Query()

	cookie, cookieErr := r.Cookie(e.opts.StateCookieName)
	e.clearState(w)

	if code := q.Get("error"); code != "" {
		return nil, &AuthorizationError{
			Code:        code,
			Description: q.Get("error_description"),
			URI:         q.Get("error_uri"),
		}
	}

	if cookieErr != nil {
		return nil, ErrStateMismatch
	}
	wantState, verifier, _ := strings.Cut(cookie.Value, ".")
	gotState := q.Get("state")
	if gotState == "" || !cryptox.EqualTokens(wantState, gotState) {
		return nil, ErrStateMismatch
	}

	code := q.Get("code")
	if code == "" {
		return nil, ErrMissingCode
	}

	var exOpts []oauth2.AuthCodeOption
	if verifier != "" {
		exOpts = append(exOpts, oauth2.VerifierOption(verifier))
	}
	tok, err := e.Exchange(ctx, code, exOpts...)
	if err != nil {
		return nil, err
	}

	profile, err := e.provider.FetchProfile(ctx, tok.AccessToken)
	if err != nil {
		return nil, &ProfileError{Provider: e.provider.Name(), Err: err}
	}

	return &Result[P]{
		Token:   tok,
		Profile: profile,
		Scopes:  e.grantedScopes(tok),
	}, nil
}

// Exchange trades an authorization code for a token.
func (e *Engine[P]) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	if e.opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.opts.HTTPClient)
	}
	tok, err := e.cfg.Exchange(ctx, code, opts...)
	if err != nil {
		e.logger.Warn("token exchange failed", "err", err)
		return nil, &ExchangeError{Provider: e.provider.Name(), Err: err}
	}
	return tok, nil
}

func (e *Engine[P]) grantedScopes(tok *oauth2.Token) []string {
	raw, _ := tok.Extra("scope").(string)
	if raw == "" {
		return append([]string(nil), e.cfg.Scopes...)
	}
	sep := e.provider.ScopeSeparator()
	if strings.TrimSpace(sep) == "" {
		return strings.Fields(raw)
	}
	var out []string
	for _, s := range strings.Split(raw, sep) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (e *Engine[P]) clearState(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     e.opts.StateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   e.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
