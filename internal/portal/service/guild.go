package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/marabinga/passport-dc/internal/portal/domain"
	"github.com/marabinga/passport-dc/internal/portal/metrics"
	"github.com/marabinga/passport-dc/internal/portal/store"
	"github.com/marabinga/passport-dc/pkg/cryptox"
	"github.com/marabinga/passport-dc/pkg/discord"
	"github.com/marabinga/passport-dc/pkg/idx"
)

// Joiner adds a user to a guild. *discord.Client satisfies it.
type Joiner interface {
	AddUserToGuild(ctx context.Context, req discord.GuildJoinRequest) error
}

// GuildService adds logged in users to the configured guild using their
// stored access token and the bot token. Member options come from server
// configuration only; the bot token would otherwise let a user pick any
// role the bot can manage.
type GuildService struct {
	Store    store.Store
	Sealer   *cryptox.Sealer
	Joiner   Joiner
	GuildID  string
	BotToken string

	// Roles are assigned to every member added through the portal.
	Roles []string

	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Now     func() time.Time
}

// Enabled reports whether a guild and bot token are configured.
func (s *GuildService) Enabled() bool {
	return s != nil && s.GuildID != "" && s.BotToken != ""
}

// Join adds the user to the guild. Every attempt that reaches Discord is
// recorded. A rejected join returns the *discord.GuildJoinError unchanged
// so callers can inspect the status; the user's session is untouched.
func (s *GuildService) Join(ctx context.Context, userID string) (domain.GuildJoin, error) {
	if !s.Enabled() {
		return domain.GuildJoin{}, ErrGuildJoinDisabled
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.GuildJoin{}, ErrUserNotFound
	}
	if err != nil {
		return domain.GuildJoin{}, err
	}
	if !slices.Contains(user.Scopes, discord.ScopeGuildsJoin) {
		s.Metrics.ObserveGuildJoin(metrics.JoinInvalid)
		return domain.GuildJoin{}, fmt.Errorf("%w: %s", ErrScopeNotGranted, discord.ScopeGuildsJoin)
	}

	accessToken, err := s.Sealer.Open(user.AccessTokenSealed)
	if err != nil {
		return domain.GuildJoin{}, fmt.Errorf("open access token: %w", err)
	}
	if accessToken == "" {
		s.Metrics.ObserveGuildJoin(metrics.JoinInvalid)
		return domain.GuildJoin{}, ErrNoAccessToken
	}

	joinErr := s.Joiner.AddUserToGuild(ctx, discord.GuildJoinRequest{
		GuildID:     s.GuildID,
		UserID:      userID,
		AccessToken: accessToken,
		BotToken:    s.BotToken,
		Options:     s.memberOptions(),
	})

	record := domain.GuildJoin{
		ID:        idx.NewAt(s.now()).String(),
		UserID:    userID,
		GuildID:   s.GuildID,
		Success:   joinErr == nil,
		CreatedAt: s.now(),
	}
	if joinErr != nil {
		record.Error = joinErr.Error()
		var gje *discord.GuildJoinError
		if errors.As(joinErr, &gje) {
			record.StatusCode = gje.StatusCode
		}
	}

	switch {
	case joinErr == nil:
		s.Metrics.ObserveGuildJoin(metrics.JoinSuccess)
	case record.StatusCode == 0:
		s.Metrics.ObserveGuildJoin(metrics.JoinTransport)
	default:
		s.Metrics.ObserveGuildJoin(metrics.JoinRejected)
	}

	if err := s.Store.GuildJoins().RecordGuildJoin(ctx, record); err != nil {
		s.logger().Error("failed to record guild join", "user_id", userID, "guild_id", s.GuildID, "err", err)
	}

	if joinErr != nil {
		s.logger().Warn("guild join failed",
			"user_id", userID,
			"guild_id", s.GuildID,
			"status", record.StatusCode,
			"err", joinErr,
		)
		return record, joinErr
	}
	return record, nil
}

func (s *GuildService) memberOptions() *discord.GuildMemberOptions {
	if len(s.Roles) == 0 {
		return nil
	}
	return &discord.GuildMemberOptions{Roles: slices.Clone(s.Roles)}
}

func (s *GuildService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *GuildService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
