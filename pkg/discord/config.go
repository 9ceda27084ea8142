package discord

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ProviderName tags every Profile produced by this package.
const ProviderName = "discord"

// Scopes understood by this package. Only ScopeConnections and ScopeGuilds
// change what FetchProfile does.
const (
	ScopeIdentify    = "identify"
	ScopeEmail       = "email"
	ScopeConnections = "connections"
	ScopeGuilds      = "guilds"
	ScopeGuildsJoin  = "guilds.join"
)

const (
	DefaultAuthorizationURL = "https://discord.com/api/oauth2/authorize"
	DefaultTokenURL         = "https://discord.com/api/oauth2/token"
	DefaultAPIBaseURL       = "https://discord.com/api"
	DefaultCDNBaseURL       = "https://cdn.discordapp.com"
	DefaultScopeSeparator   = " "
	DefaultTimeout          = 10 * time.Second
)

// Config is everything a Strategy needs. ClientID, ClientSecret and
// CallbackURL are required; the rest have Discord defaults.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string

	Scopes []string

	AuthorizationURL string
	TokenURL         string
	ScopeSeparator   string

	// Permissions and Prompt are forwarded to the authorize URL untouched
	// when non-empty.
	Permissions string
	Prompt      string

	APIBaseURL string
	CDNBaseURL string

	// HTTPClient sends every API call. Nil means a plain client; per-call
	// deadlines come from Timeout, not from the client.
	HTTPClient *http.Client

	// Timeout bounds each outbound request separately.
	Timeout time.Duration

	Logger *slog.Logger
}

func (c Config) validate() error {
	var missing []string
	if strings.TrimSpace(c.ClientID) == "" {
		missing = append(missing, "ClientID")
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		missing = append(missing, "ClientSecret")
	}
	if strings.TrimSpace(c.CallbackURL) == "" {
		missing = append(missing, "CallbackURL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.AuthorizationURL == "" {
		c.AuthorizationURL = DefaultAuthorizationURL
	}
	if c.TokenURL == "" {
		c.TokenURL = DefaultTokenURL
	}
	if c.ScopeSeparator == "" {
		c.ScopeSeparator = DefaultScopeSeparator
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.CDNBaseURL == "" {
		c.CDNBaseURL = DefaultCDNBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	c.Scopes = append([]string(nil), c.Scopes...)
	return c
}
