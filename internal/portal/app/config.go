package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/marabinga/passport-dc/pkg/discord"
	"github.com/marabinga/passport-dc/pkg/httpx"
)

// DefaultScopes are requested when DISCORD_SCOPES is unset.
var DefaultScopes = []string{
	discord.ScopeIdentify,
	discord.ScopeEmail,
	discord.ScopeGuilds,
	discord.ScopeConnections,
	discord.ScopeGuildsJoin,
}

var ErrInvalidConfig = errors.New("app: invalid config")

type Config struct {
	DiscordClientID     string        // Required: OAuth2 application id
	DiscordClientSecret string        // Required: OAuth2 application secret
	DiscordCallbackURL  string        // Required: registered redirect URI
	DiscordScopes       []string      // Optional: requested scopes (default: DefaultScopes)
	DiscordPrompt       string        // Optional: "consent" or "none"
	DiscordPermissions  string        // Optional: bot permissions integer for the authorize URL
	DiscordGuildID      string        // Optional: guild users may join; empty disables joining
	DiscordBotToken     string        // Optional: bot token used for guild joins
	DiscordJoinRoles    []string      // Optional: role ids given to members added by the portal
	DiscordAPIURL       string        // Optional: REST base URL (default: https://discord.com/api)
	DiscordTimeout      time.Duration // Optional: per request timeout towards Discord (default: 10s)
	DiscordPKCE         bool          // Optional: add a PKCE challenge to the login (default: true)

	Secret               string        // Required: root secret for token sealing and session signing
	Issuer               string        // Optional: session token issuer (default: passport-dc)
	DatabaseFile         string        // Optional: path to SQLite database file (default: ./portal.db)
	SessionTTL           time.Duration // Optional: session lifetime (default: 24h)
	SecureCookies        bool          // Optional: mark cookies Secure (default: true outside dev)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired session sweep interval (default: 1h)
}

func LoadConfig() Config {
	env := getEnvOrDefault("ENV", "dev")
	cfg := Config{
		DiscordClientID:     os.Getenv("DISCORD_CLIENT_ID"),
		DiscordClientSecret: os.Getenv("DISCORD_CLIENT_SECRET"),
		DiscordCallbackURL:  os.Getenv("DISCORD_CALLBACK_URL"),
		DiscordScopes:       DefaultScopes,
		DiscordPrompt:       os.Getenv("DISCORD_PROMPT"),
		DiscordPermissions:  os.Getenv("DISCORD_PERMISSIONS"),
		DiscordGuildID:      os.Getenv("DISCORD_GUILD_ID"),
		DiscordBotToken:     os.Getenv("DISCORD_BOT_TOKEN"),
		DiscordAPIURL:       getEnvOrDefault("DISCORD_API_URL", discord.DefaultAPIBaseURL),
		DiscordTimeout:      getEnvDurationOrDefault("DISCORD_TIMEOUT", discord.DefaultTimeout),
		DiscordPKCE:         getEnvBoolOrDefault("DISCORD_PKCE", true),

		Secret:               os.Getenv("PORTAL_SECRET"),
		Issuer:               getEnvOrDefault("PORTAL_ISSUER", "passport-dc"),
		DatabaseFile:         getEnvOrDefault("PORTAL_DATABASE_FILE", "portal.db"),
		SessionTTL:           getEnvDurationOrDefault("SESSION_TTL", 24*time.Hour),
		SecureCookies:        getEnvBoolOrDefault("SECURE_COOKIES", env != "dev"),
		Env:                  env,
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
	}

	if scopes := httpx.ParseSpaceDelimitedFields(os.Getenv("DISCORD_SCOPES")); len(scopes) > 0 {
		cfg.DiscordScopes = scopes
	}
	cfg.DiscordJoinRoles = httpx.ParseSpaceDelimitedFields(os.Getenv("DISCORD_JOIN_ROLES"))

	return cfg
}

// Validate reports every missing required field at once.
func (c Config) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"DISCORD_CLIENT_ID", c.DiscordClientID},
		{"DISCORD_CLIENT_SECRET", c.DiscordClientSecret},
		{"DISCORD_CALLBACK_URL", c.DiscordCallbackURL},
		{"PORTAL_SECRET", c.Secret},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}
	if (c.DiscordGuildID == "") != (c.DiscordBotToken == "") {
		return fmt.Errorf("%w: DISCORD_GUILD_ID and DISCORD_BOT_TOKEN must be set together", ErrInvalidConfig)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
