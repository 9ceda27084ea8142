package service

import (
	"context"
	"errors"
	"time"

	"github.com/marabinga/passport-dc/internal/portal/domain"
	"github.com/marabinga/passport-dc/internal/portal/store"
)

// SessionService backs the session cookie with the sessions table.
type SessionService struct {
	Store store.Store
	Now   func() time.Time
}

// CheckSession implements httpx.SessionChecker.
func (s *SessionService) CheckSession(ctx context.Context, sessionID string) error {
	_, err := s.GetSession(ctx, sessionID)
	return err
}

// GetSession returns a live session.
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (domain.Session, error) {
	if sessionID == "" {
		return domain.Session{}, ErrSessionNotFound
	}
	sess, err := s.Store.Sessions().GetSessionByID(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	if sess.Expired(s.now()) {
		return domain.Session{}, ErrSessionExpired
	}
	return sess, nil
}

// Logout deletes the session. Deleting an unknown session is not an error.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	err := s.Store.Sessions().DeleteSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// LogoutEverywhere deletes every session of the user.
func (s *SessionService) LogoutEverywhere(ctx context.Context, userID string) (int64, error) {
	return s.Store.Sessions().DeleteSessionsForUser(ctx, userID)
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
