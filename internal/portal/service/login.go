package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/marabinga/passport-dc/internal/portal/domain"
	"github.com/marabinga/passport-dc/internal/portal/metrics"
	"github.com/marabinga/passport-dc/internal/portal/store"
	"github.com/marabinga/passport-dc/pkg/cryptox"
	"github.com/marabinga/passport-dc/pkg/discord"
	"github.com/marabinga/passport-dc/pkg/idx"
	"github.com/marabinga/passport-dc/pkg/jwtx"
	"github.com/marabinga/passport-dc/pkg/oauth2x"
)

// LoginMeta describes the browser completing the login.
type LoginMeta struct {
	UserAgent string
	IP        string
}

// LoginResult is what the callback handler needs to finish the response.
type LoginResult struct {
	User    domain.User
	Session domain.Session
	Token   string
}

// LoginService persists a completed Discord login and issues the session.
type LoginService struct {
	Store      store.Store
	Sealer     *cryptox.Sealer
	Signer     jwtx.Signer
	Issuer     string
	SessionTTL time.Duration
	Metrics    *metrics.Metrics
	Logger     *slog.Logger

	// Now is overridable for tests.
	Now func() time.Time
}

// Complete upserts the user and creates a session in one transaction,
// then signs the session token.
func (s *LoginService) Complete(ctx context.Context, res *oauth2x.Result[*discord.Profile], meta LoginMeta) (LoginResult, error) {
	if res == nil || res.Profile == nil || res.Profile.ID == "" {
		s.Metrics.ObserveLogin(metrics.LoginProfile)
		return LoginResult{}, ErrInvalidLogin
	}
	p := res.Profile
	now := s.now()

	user, err := s.buildUser(res, now)
	if err != nil {
		s.Metrics.ObserveLogin(metrics.LoginStore)
		return LoginResult{}, err
	}

	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}
	sess := domain.Session{
		ID:        idx.NewAt(now).String(),
		UserID:    p.ID,
		Scopes:    res.Scopes,
		UserAgent: meta.UserAgent,
		IP:        meta.IP,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpsertUser(ctx, user); err != nil {
			return fmt.Errorf("upsert user: %w", err)
		}
		if err := tx.Sessions().CreateSession(ctx, sess); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	})
	if err != nil {
		s.Metrics.ObserveLogin(metrics.LoginStore)
		return LoginResult{}, err
	}

	claims := jwtx.NewSessionClaims(p.ID, sess.ID, p.Username, res.Scopes, ttl, s.Issuer, now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		s.Metrics.ObserveLogin(metrics.LoginStore)
		return LoginResult{}, fmt.Errorf("sign session: %w", err)
	}

	s.Metrics.ObserveLogin(metrics.LoginSuccess)
	s.logger().Info("user logged in",
		"user_id", p.ID,
		"username", p.Username,
		"sid", sess.ID,
		"scopes", res.Scopes,
		"guilds", len(p.Guilds),
		"connections", len(p.Connections),
	)

	return LoginResult{User: user, Session: sess, Token: token}, nil
}

func (s *LoginService) buildUser(res *oauth2x.Result[*discord.Profile], now time.Time) (domain.User, error) {
	p := res.Profile

	raw, err := json.Marshal(p)
	if err != nil {
		return domain.User{}, fmt.Errorf("encode profile: %w", err)
	}

	access, refresh := p.AccessToken, p.RefreshToken
	var expiresAt *time.Time
	if res.Token != nil {
		if access == "" {
			access = res.Token.AccessToken
		}
		if refresh == "" {
			refresh = res.Token.RefreshToken
		}
		if !res.Token.Expiry.IsZero() {
			exp := res.Token.Expiry.UTC()
			expiresAt = &exp
		}
	}

	accessSealed, err := s.Sealer.Seal(access)
	if err != nil {
		return domain.User{}, fmt.Errorf("seal access token: %w", err)
	}
	refreshSealed, err := s.Sealer.Seal(refresh)
	if err != nil {
		return domain.User{}, fmt.Errorf("seal refresh token: %w", err)
	}

	fetchedAt := p.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = now
	}

	return domain.User{
		ID:                 p.ID,
		Username:           p.Username,
		GlobalName:         p.DisplayName(),
		Email:              p.Email,
		AvatarURL:          p.AvatarURL,
		Profile:            raw,
		Scopes:             res.Scopes,
		AccessTokenSealed:  accessSealed,
		RefreshTokenSealed: refreshSealed,
		TokenExpiresAt:     expiresAt,
		FetchedAt:          fetchedAt,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

func (s *LoginService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *LoginService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
