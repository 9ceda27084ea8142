package discord_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marabinga/passport-dc/pkg/discord"
	"github.com/stretchr/testify/require"
)

func newClient(f *fakeDiscord) *discord.Client {
	return discord.NewClient(discord.ClientOptions{APIBaseURL: f.apiURL()})
}

func joinRequest(opts *discord.GuildMemberOptions) discord.GuildJoinRequest {
	return discord.GuildJoinRequest{
		GuildID:     "g1",
		UserID:      "u1",
		AccessToken: "user-token",
		BotToken:    "bot-token",
		Options:     opts,
	}
}

func TestAddUserToGuild_Success(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusNoContent} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			f := newFakeDiscord(t)
			body := ""
			if status == http.StatusCreated {
				body = `{"user":{"id":"u1"},"roles":[]}`
			}
			f.set("join", status, body)

			err := newClient(f).AddUserToGuild(context.Background(), joinRequest(nil))
			require.NoError(t, err)

			require.Equal(t, []string{"PUT /api/guilds/g1/members/u1"}, f.recordedCalls())
			require.Equal(t, []string{"Bot bot-token"}, f.recordedAuth())
			require.Equal(t, map[string]any{"access_token": "user-token"}, f.body())
		})
	}
}

func TestAddUserToGuild_Rejected(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusForbidden, http.StatusNotFound, http.StatusTooManyRequests} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			f := newFakeDiscord(t)
			f.set("join", status, `{"message":"Missing Permissions","code":50013}`)

			err := newClient(f).AddUserToGuild(context.Background(), joinRequest(nil))
			require.Error(t, err)

			var joinErr *discord.GuildJoinError
			require.ErrorAs(t, err, &joinErr)
			require.Equal(t, "g1", joinErr.GuildID)
			require.Equal(t, "u1", joinErr.UserID)
			require.Equal(t, status, joinErr.StatusCode)
			require.JSONEq(t, `{"message":"Missing Permissions","code":50013}`, string(joinErr.Body))
			require.Contains(t, err.Error(), "user id u1")
			require.Contains(t, err.Error(), "guild id g1")

			var statusErr *discord.StatusError
			require.ErrorAs(t, err, &statusErr)
			require.Equal(t, 50013, statusErr.Code)
		})
	}
}

func TestAddUserToGuild_Options(t *testing.T) {
	f := newFakeDiscord(t)
	f.set("join", http.StatusCreated, `{}`)

	mute := true
	deaf := false
	err := newClient(f).AddUserToGuild(context.Background(), joinRequest(&discord.GuildMemberOptions{
		Nick:  "Nell",
		Roles: []string{"r1", "r2"},
		Mute:  &mute,
		Deaf:  &deaf,
		Extra: map[string]any{
			"access_token": "spoofed",
			"flags":        float64(0),
		},
	}))
	require.NoError(t, err)

	require.Equal(t, map[string]any{
		"access_token": "user-token",
		"nick":         "Nell",
		"roles":        []any{"r1", "r2"},
		"mute":         true,
		"deaf":         false,
		"flags":        float64(0),
	}, f.body())
}

func TestAddUserToGuild_MissingArguments(t *testing.T) {
	f := newFakeDiscord(t)
	c := newClient(f)

	cases := map[string]func(*discord.GuildJoinRequest){
		"guild id":     func(r *discord.GuildJoinRequest) { r.GuildID = "" },
		"user id":      func(r *discord.GuildJoinRequest) { r.UserID = "" },
		"access token": func(r *discord.GuildJoinRequest) { r.AccessToken = "" },
		"bot token":    func(r *discord.GuildJoinRequest) { r.BotToken = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := joinRequest(nil)
			mutate(&req)

			err := c.AddUserToGuild(context.Background(), req)
			require.ErrorIs(t, err, discord.ErrMissingArgument)
			require.Contains(t, err.Error(), name)

			var joinErr *discord.GuildJoinError
			require.ErrorAs(t, err, &joinErr)
			require.Zero(t, joinErr.StatusCode)
		})
	}
	require.Empty(t, f.recordedCalls())
}

func TestAddUserToGuild_Transport(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()

	c := discord.NewClient(discord.ClientOptions{APIBaseURL: dead.URL + "/api"})
	err := c.AddUserToGuild(context.Background(), joinRequest(nil))

	var joinErr *discord.GuildJoinError
	require.ErrorAs(t, err, &joinErr)
	require.Zero(t, joinErr.StatusCode)

	var transportErr *discord.TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, http.MethodPut, transportErr.Method)
}

func TestAddUserToGuild_PackageLevel(t *testing.T) {
	f := newFakeDiscord(t)
	f.set("join", http.StatusNoContent, "")

	prev := discord.DefaultClient
	discord.DefaultClient = newClient(f)
	t.Cleanup(func() { discord.DefaultClient = prev })

	require.NoError(t, discord.AddUserToGuild(context.Background(), "g1", "u1", "user-token", "bot-token", nil))

	f.set("join", http.StatusForbidden, "")
	err := discord.AddUserToGuild(context.Background(), "g1", "u1", "user-token", "bot-token", nil)
	var joinErr *discord.GuildJoinError
	require.ErrorAs(t, err, &joinErr)
	require.Equal(t, http.StatusForbidden, joinErr.StatusCode)
}

func TestAddUserToGuild_HeadersAndEscaping(t *testing.T) {
	var got *http.Request
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_ = json.NewDecoder(r.Body).Decode(&raw)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	c := discord.NewClient(discord.ClientOptions{APIBaseURL: srv.URL + "/api"})
	req := joinRequest(nil)
	req.GuildID = "g/1"
	require.NoError(t, c.AddUserToGuild(context.Background(), req))

	require.Equal(t, http.MethodPut, got.Method)
	require.Equal(t, "/api/guilds/g%2F1/members/u1", got.URL.EscapedPath())
	require.Equal(t, "application/json", got.Header.Get("Content-Type"))
	require.Equal(t, discord.DefaultUserAgent, got.Header.Get("User-Agent"))
	require.Equal(t, "user-token", raw["access_token"])
}
