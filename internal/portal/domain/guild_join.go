package domain

import "time"

// GuildJoin records one attempt to add a user to a guild.
type GuildJoin struct {
	ID         string // ULID
	UserID     string
	GuildID    string
	StatusCode int // zero when Discord was never reached
	Success    bool
	Error      string
	CreatedAt  time.Time
}
