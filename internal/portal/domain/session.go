package domain

import "time"

// Session backs a signed session cookie. Deleting the row logs the browser
// out even though its cookie is still validly signed.
type Session struct {
	ID        string // ULID
	UserID    string
	Scopes    []string
	UserAgent string
	IP        string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
