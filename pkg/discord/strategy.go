package discord

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/marabinga/passport-dc/pkg/oauth2x"
	"github.com/marabinga/passport-dc/pkg/slogx"
	"golang.org/x/oauth2"
)

// Strategy is the Discord provider for oauth2x.Engine.
type Strategy struct {
	cfg    Config
	oauth  *oauth2.Config
	client *Client
	logger *slog.Logger
	now    func() time.Time
}

var _ oauth2x.Provider[*Profile] = (*Strategy)(nil)

// New validates cfg and builds a Strategy.
func New(cfg Config) (*Strategy, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	logger := cfg.Logger
	if logger == nil {
		logger = slogx.Discard()
	}
	logger = logger.With("provider", ProviderName)

	return &Strategy{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthorizationURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		client: NewClient(ClientOptions{
			APIBaseURL: cfg.APIBaseURL,
			CDNBaseURL: cfg.CDNBaseURL,
			HTTPClient: cfg.HTTPClient,
			Timeout:    cfg.Timeout,
			Logger:     logger,
		}),
		logger: logger,
		now:    time.Now,
	}, nil
}

func (s *Strategy) Name() string { return ProviderName }

// OAuth2Config returns a copy so callers cannot mutate the strategy.
func (s *Strategy) OAuth2Config() *oauth2.Config {
	c := *s.oauth
	c.Scopes = slices.Clone(s.oauth.Scopes)
	return &c
}

func (s *Strategy) ScopeSeparator() string { return s.cfg.ScopeSeparator }

// Scopes are the configured scopes.
func (s *Strategy) Scopes() []string { return slices.Clone(s.cfg.Scopes) }

// HasScope reports whether scope was configured.
func (s *Strategy) HasScope(scope string) bool {
	return slices.Contains(s.cfg.Scopes, scope)
}

// Client is the API client used for profile fetches, with the strategy's
// base URLs, HTTP client and timeout.
func (s *Strategy) Client() *Client { return s.client }

// AuthorizationParams returns permissions and prompt when set. Values in
// opts.Extra override the configured ones for this request.
func (s *Strategy) AuthorizationParams(opts oauth2x.AuthorizeOptions) map[string]string {
	params := map[string]string{}
	if s.cfg.Permissions != "" {
		params["permissions"] = s.cfg.Permissions
	}
	if s.cfg.Prompt != "" {
		params["prompt"] = s.cfg.Prompt
	}
	for _, k := range []string{"permissions", "prompt"} {
		if v, ok := opts.Extra[k]; ok && v != "" {
			params[k] = v
		}
	}
	return params
}

// FetchProfile loads /users/@me, then connections and guilds when their
// scope is configured. The first failure aborts the fetch and no profile
// is returned.
func (s *Strategy) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	p, err := s.client.CurrentUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	p.Provider = ProviderName
	p.AccessToken = accessToken
	p.AvatarURL = AvatarURL(s.client.CDNBaseURL(), p.ID, p.Avatar)

	if s.HasScope(ScopeConnections) {
		conns, err := s.client.UserConnections(ctx, accessToken)
		if err != nil {
			return nil, err
		}
		p.Connections = conns
	}

	if s.HasScope(ScopeGuilds) {
		guilds, err := s.client.UserGuilds(ctx, accessToken)
		if err != nil {
			return nil, err
		}
		p.Guilds = guilds
	}

	p.FetchedAt = s.now().UTC()
	s.logger.Debug("profile fetched",
		"user_id", p.ID,
		"connections", len(p.Connections),
		"guilds", len(p.Guilds),
	)
	return p, nil
}
