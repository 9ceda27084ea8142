package service

import (
	"context"
	"errors"

	"github.com/marabinga/passport-dc/internal/portal/domain"
	"github.com/marabinga/passport-dc/internal/portal/store"
)

type UserService struct {
	Store store.Store
}

// GetUserByID fetches a user by Discord id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// GuildJoins lists the user's recent join attempts, newest first.
func (s *UserService) GuildJoins(ctx context.Context, userID string, limit int) ([]domain.GuildJoin, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.Store.GuildJoins().ListGuildJoinsForUser(ctx, userID, limit)
}
