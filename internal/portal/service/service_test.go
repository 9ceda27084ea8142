package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/marabinga/passport-dc/internal/portal/domain"
	"github.com/marabinga/passport-dc/internal/portal/metrics"
	"github.com/marabinga/passport-dc/internal/portal/store/drivers/sqlite"
	"github.com/marabinga/passport-dc/pkg/cryptox"
	"github.com/marabinga/passport-dc/pkg/discord"
	"github.com/marabinga/passport-dc/pkg/jwtx"
	"github.com/marabinga/passport-dc/pkg/oauth2x"
	"github.com/marabinga/passport-dc/pkg/slogx"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	store    *sqlite.Store
	sealer   *cryptox.Sealer
	signer   *jwtx.HS256Signer
	verifier *jwtx.HS256Verifier
	metrics  *metrics.Metrics
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	sealKey, err := cryptox.DeriveKey([]byte(testSecret), cryptox.PurposeTokenSealing)
	require.NoError(t, err)
	sealer, err := cryptox.NewSealer(sealKey)
	require.NoError(t, err)

	signKey, err := cryptox.DeriveKey([]byte(testSecret), cryptox.PurposeSessionSigning)
	require.NoError(t, err)
	signer, err := jwtx.NewSignerHS256(signKey)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256(signKey, jwtx.VerifyOptions{Issuer: "passport-test"})
	require.NoError(t, err)

	return &fixture{
		store:    st,
		sealer:   sealer,
		signer:   signer,
		verifier: verifier,
		metrics:  metrics.New(),
		now:      time.Now().UTC().Truncate(time.Millisecond),
	}
}

func (f *fixture) login() *LoginService {
	return &LoginService{
		Store:      f.store,
		Sealer:     f.sealer,
		Signer:     f.signer,
		Issuer:     "passport-test",
		SessionTTL: time.Hour,
		Metrics:    f.metrics,
		Logger:     slogx.Discard(),
		Now:        func() time.Time { return f.now },
	}
}

func loginResult(id string, scopes ...string) *oauth2x.Result[*discord.Profile] {
	email := id + "@example.test"
	return &oauth2x.Result[*discord.Profile]{
		Token: &oauth2.Token{
			AccessToken:  "access-" + id,
			RefreshToken: "refresh-" + id,
			Expiry:       time.Now().Add(7 * 24 * time.Hour),
		},
		Profile: &discord.Profile{
			ID:           id,
			Username:     "user" + id,
			Email:        &email,
			Provider:     discord.ProviderName,
			AvatarURL:    discord.AvatarURL(discord.DefaultCDNBaseURL, id, nil),
			AccessToken:  "access-" + id,
			RefreshToken: "refresh-" + id,
			Guilds:       []discord.Guild{{ID: "g1", Name: "Guild"}},
			FetchedAt:    time.Now().UTC(),
		},
		Scopes: scopes,
	}
}

func TestLoginComplete(t *testing.T) {
	f := newFixture(t)
	svc := f.login()
	ctx := context.Background()

	res, err := svc.Complete(ctx, loginResult("42", "identify", "guilds.join"), LoginMeta{UserAgent: "test", IP: "10.0.0.1"})
	require.NoError(t, err)

	t.Run("user stored with sealed tokens", func(t *testing.T) {
		u, err := f.store.Users().GetUserByID(ctx, "42")
		require.NoError(t, err)
		require.Equal(t, "user42", u.Username)
		require.Equal(t, []string{"identify", "guilds.join"}, u.Scopes)
		require.NotContains(t, string(u.AccessTokenSealed), "access-42")
		require.NotContains(t, string(u.Profile), "access-42")
		require.NotContains(t, string(u.Profile), "refresh-42")
		require.NotNil(t, u.TokenExpiresAt)

		access, err := f.sealer.Open(u.AccessTokenSealed)
		require.NoError(t, err)
		require.Equal(t, "access-42", access)
	})

	t.Run("session row matches token", func(t *testing.T) {
		claims, err := f.verifier.Verify(res.Token)
		require.NoError(t, err)
		require.Equal(t, "42", claims.Subject)
		require.Equal(t, res.Session.ID, claims.SID)
		require.Equal(t, []string{"identify", "guilds.join"}, claims.Scopes)

		sess, err := f.store.Sessions().GetSessionByID(ctx, claims.SID)
		require.NoError(t, err)
		require.Equal(t, "42", sess.UserID)
		require.Equal(t, "10.0.0.1", sess.IP)
		require.WithinDuration(t, f.now.Add(time.Hour), sess.ExpiresAt, time.Millisecond)
	})

	t.Run("second login refreshes the same user", func(t *testing.T) {
		again := loginResult("42", "identify")
		again.Profile.Username = "renamed"
		_, err := svc.Complete(ctx, again, LoginMeta{})
		require.NoError(t, err)

		n, err := f.store.Users().CountUsers(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, n)

		u, err := f.store.Users().GetUserByID(ctx, "42")
		require.NoError(t, err)
		require.Equal(t, "renamed", u.Username)
		require.Equal(t, []string{"identify"}, u.Scopes)
	})

	t.Run("rejects empty profile", func(t *testing.T) {
		_, err := svc.Complete(ctx, &oauth2x.Result[*discord.Profile]{}, LoginMeta{})
		require.ErrorIs(t, err, ErrInvalidLogin)
		_, err = svc.Complete(ctx, nil, LoginMeta{})
		require.ErrorIs(t, err, ErrInvalidLogin)
	})
}

func TestSessionService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.login().Complete(ctx, loginResult("7", "identify"), LoginMeta{})
	require.NoError(t, err)

	svc := &SessionService{Store: f.store}

	t.Run("live session passes", func(t *testing.T) {
		require.NoError(t, svc.CheckSession(ctx, res.Session.ID))
	})

	t.Run("unknown session", func(t *testing.T) {
		require.ErrorIs(t, svc.CheckSession(ctx, "nope"), ErrSessionNotFound)
		require.ErrorIs(t, svc.CheckSession(ctx, ""), ErrSessionNotFound)
	})

	t.Run("expired session", func(t *testing.T) {
		late := &SessionService{Store: f.store, Now: func() time.Time { return f.now.Add(2 * time.Hour) }}
		require.ErrorIs(t, late.CheckSession(ctx, res.Session.ID), ErrSessionExpired)
	})

	t.Run("logout removes the session", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx, res.Session.ID))
		require.ErrorIs(t, svc.CheckSession(ctx, res.Session.ID), ErrSessionNotFound)
		require.NoError(t, svc.Logout(ctx, res.Session.ID))
	})
}

type fakeJoiner struct {
	calls []discord.GuildJoinRequest
	err   error
}

func (j *fakeJoiner) AddUserToGuild(_ context.Context, req discord.GuildJoinRequest) error {
	j.calls = append(j.calls, req)
	return j.err
}

func (f *fixture) guild(j Joiner) *GuildService {
	return &GuildService{
		Store:    f.store,
		Sealer:   f.sealer,
		Joiner:   j,
		GuildID:  "g1",
		BotToken: "bot-token",
		Metrics:  f.metrics,
		Logger:   slogx.Discard(),
	}
}

func TestGuildJoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.login().Complete(ctx, loginResult("1", "identify", discord.ScopeGuildsJoin), LoginMeta{})
	require.NoError(t, err)
	_, err = f.login().Complete(ctx, loginResult("2", "identify"), LoginMeta{})
	require.NoError(t, err)

	t.Run("success passes decrypted token", func(t *testing.T) {
		j := &fakeJoiner{}

		rec, err := f.guild(j).Join(ctx, "1")
		require.NoError(t, err)
		require.True(t, rec.Success)

		require.Len(t, j.calls, 1)
		require.Equal(t, discord.GuildJoinRequest{
			GuildID:     "g1",
			UserID:      "1",
			AccessToken: "access-1",
			BotToken:    "bot-token",
		}, j.calls[0])
	})

	t.Run("configured roles are the only member options", func(t *testing.T) {
		j := &fakeJoiner{}
		svc := f.guild(j)
		svc.Roles = []string{"member-role"}

		_, err := svc.Join(ctx, "1")
		require.NoError(t, err)
		require.Len(t, j.calls, 1)
		require.Equal(t, &discord.GuildMemberOptions{Roles: []string{"member-role"}}, j.calls[0].Options)
	})

	t.Run("rejection is returned and recorded", func(t *testing.T) {
		joinErr := &discord.GuildJoinError{GuildID: "g1", UserID: "1", StatusCode: http.StatusForbidden}
		j := &fakeJoiner{err: joinErr}

		rec, err := f.guild(j).Join(ctx, "1")
		var gje *discord.GuildJoinError
		require.True(t, errors.As(err, &gje))
		require.Equal(t, http.StatusForbidden, gje.StatusCode)
		require.False(t, rec.Success)
		require.Equal(t, http.StatusForbidden, rec.StatusCode)

		joins, err := f.store.GuildJoins().ListGuildJoinsForUser(ctx, "1", 10)
		require.NoError(t, err)
		require.Len(t, joins, 3)
		require.False(t, joins[0].Success)
		require.Contains(t, joins[0].Error, "unable to make user id 1 join the guild id g1")
		require.True(t, joins[1].Success)
	})

	t.Run("scope not granted", func(t *testing.T) {
		j := &fakeJoiner{}
		_, err := f.guild(j).Join(ctx, "2")
		require.ErrorIs(t, err, ErrScopeNotGranted)
		require.Empty(t, j.calls)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.guild(&fakeJoiner{}).Join(ctx, "404")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("disabled without bot token", func(t *testing.T) {
		svc := f.guild(&fakeJoiner{})
		svc.BotToken = ""
		require.False(t, svc.Enabled())
		_, err := svc.Join(ctx, "1")
		require.ErrorIs(t, err, ErrGuildJoinDisabled)
	})
}

func TestHousekeepingSweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.login().Complete(ctx, loginResult("9", "identify"), LoginMeta{})
	require.NoError(t, err)

	require.NoError(t, f.store.Sessions().CreateSession(ctx, domain.Session{
		ID:        "expired",
		UserID:    "9",
		ExpiresAt: time.Now().Add(-time.Minute),
		CreatedAt: time.Now().Add(-time.Hour),
	}))

	hk := NewHousekeepingService(f.store, slogx.Discard(), f.metrics, time.Hour)
	require.Equal(t, int64(1), hk.Sweep(ctx))
	require.Equal(t, int64(0), hk.Sweep(ctx))

	t.Run("start and stop", func(t *testing.T) {
		hk := NewHousekeepingService(f.store, slogx.Discard(), nil, 0)
		require.Equal(t, time.Hour, hk.Interval)
		hk.Start()
		hk.Stop()
	})
}

func TestUserService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.login().Complete(ctx, loginResult("5", "identify"), LoginMeta{})
	require.NoError(t, err)

	svc := &UserService{Store: f.store}
	u, err := svc.GetUserByID(ctx, "5")
	require.NoError(t, err)
	require.Equal(t, "user5", u.Username)

	_, err = svc.GetUserByID(ctx, "6")
	require.ErrorIs(t, err, ErrUserNotFound)

	joins, err := svc.GuildJoins(ctx, "5", 0)
	require.NoError(t, err)
	require.Empty(t, joins)
}
