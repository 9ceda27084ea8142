package portalsdk

import (
	"encoding/json"
	"time"
)

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// HealthResponse is returned by /livez and /readyz. Checks is only set by
// /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database  string `json:"database"`
	GuildJoin string `json:"guild_join"`
}

// MeResponse describes the signed in user.
type MeResponse struct {
	UserID     string   `json:"user_id"`
	Username   string   `json:"username"`
	GlobalName string   `json:"global_name,omitempty"`
	Email      *string  `json:"email,omitempty"`
	AvatarURL  string   `json:"avatar_url"`
	Scopes     []string `json:"scopes"`

	// Profile is the last fetched Discord profile, tokens excluded.
	Profile json.RawMessage `json:"profile" swaggertype:"object"`

	FetchedAt        time.Time `json:"fetched_at"`
	SessionID        string    `json:"session_id"`
	SessionExpiresAt time.Time `json:"session_expires_at"`
}

// GuildJoinResponse describes one join attempt.
type GuildJoinResponse struct {
	ID         string    `json:"id"`
	GuildID    string    `json:"guild_id"`
	UserID     string    `json:"user_id"`
	Success    bool      `json:"success"`
	StatusCode int       `json:"status_code,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type GuildJoinsResponse struct {
	Joins []GuildJoinResponse `json:"joins"`
}
