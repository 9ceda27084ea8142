package domain

import "time"

// User is a Discord account that has logged in at least once. The id is
// the Discord snowflake.
type User struct {
	ID         string
	Username   string
	GlobalName string
	Email      *string
	AvatarURL  string

	// Profile is the last fetched profile, JSON encoded without tokens.
	Profile []byte

	// Scopes granted at the most recent login.
	Scopes []string

	// OAuth tokens, sealed with AES-GCM. Never stored in the clear.
	AccessTokenSealed  []byte
	RefreshTokenSealed []byte
	TokenExpiresAt     *time.Time

	FetchedAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
