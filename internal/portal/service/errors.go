package service

import "errors"

var (
	ErrSessionNotFound   = errors.New("service: session not found")
	ErrSessionExpired    = errors.New("service: session expired")
	ErrUserNotFound      = errors.New("service: user not found")
	ErrGuildJoinDisabled = errors.New("service: guild join not configured")
	ErrScopeNotGranted   = errors.New("service: scope not granted")
	ErrNoAccessToken     = errors.New("service: no stored access token")
	ErrInvalidLogin      = errors.New("service: invalid login result")
)
