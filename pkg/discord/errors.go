package discord

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig   = errors.New("discord: invalid config")
	ErrMissingArgument = errors.New("discord: missing argument")
)

const maxErrorBody = 256

// TransportError is a request that never produced an HTTP response:
// DNS, connection refused, TLS, deadline exceeded.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("discord: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a response with an unexpected status code. Code and
// Message are filled from Discord's JSON error body when present.
type StatusError struct {
	StatusCode int
	Body       []byte

	Code    int
	Message string
}

func newStatusError(status int, body []byte) *StatusError {
	e := &StatusError{StatusCode: status, Body: body}
	var apiErr struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) == nil {
		e.Code = apiErr.Code
		e.Message = apiErr.Message
	}
	return e
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("discord: status %d: %s (code %d)", e.StatusCode, e.Message, e.Code)
	}
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	if len(body) == 0 {
		return fmt.Sprintf("discord: status %d", e.StatusCode)
	}
	return fmt.Sprintf("discord: status %d: %s", e.StatusCode, body)
}

// ParseError is a response body that could not be decoded. Resource is
// "profile", "connections" or "guilds".
type ParseError struct {
	Resource string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("discord: failed to parse the user's %s: %v", e.Resource, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ProfileFetchError is a failure of the /users/@me request.
type ProfileFetchError struct {
	Err error
}

func (e *ProfileFetchError) Error() string {
	return fmt.Sprintf("discord: failed to fetch the user profile: %v", e.Err)
}

func (e *ProfileFetchError) Unwrap() error { return e.Err }

// ScopeFetchError is a failure of a scope-gated request (connections or guilds).
type ScopeFetchError struct {
	Scope string
	Err   error
}

func (e *ScopeFetchError) Error() string {
	return fmt.Sprintf("discord: failed to fetch the user's %s: %v", e.Scope, e.Err)
}

func (e *ScopeFetchError) Unwrap() error { return e.Err }

// GuildJoinError is any failed AddUserToGuild call. StatusCode is zero when
// no response was received.
type GuildJoinError struct {
	GuildID    string
	UserID     string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *GuildJoinError) Error() string {
	msg := fmt.Sprintf("discord: unable to make user id %s join the guild id %s", e.UserID, e.GuildID)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s: status %d", msg, e.StatusCode)
}

func (e *GuildJoinError) Unwrap() error { return e.Err }
