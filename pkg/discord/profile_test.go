package discord_test

import (
	"encoding/json"
	"testing"

	"github.com/marabinga/passport-dc/pkg/discord"
	"github.com/stretchr/testify/require"
)

func TestAvatarURL(t *testing.T) {
	hash := "a_1269e74af4df7417b13759eae50c83dc"

	t.Run("deterministic", func(t *testing.T) {
		a := discord.AvatarURL(discord.DefaultCDNBaseURL, "42", &hash)
		b := discord.AvatarURL(discord.DefaultCDNBaseURL, "42", &hash)
		require.Equal(t, a, b)
		require.Equal(t, "https://cdn.discordapp.com/avatars/42/a_1269e74af4df7417b13759eae50c83dc.png?size=1024", a)
	})

	t.Run("nil avatar keeps null segment", func(t *testing.T) {
		require.Equal(t, "https://cdn.discordapp.com/avatars/42/null.png?size=1024",
			discord.AvatarURL(discord.DefaultCDNBaseURL, "42", nil))
	})

	t.Run("custom cdn", func(t *testing.T) {
		require.Equal(t, "http://cdn.test/avatars/7/x.png?size=1024",
			discord.AvatarURL("http://cdn.test", "7", &[]string{"x"}[0]))
	})
}

func TestProfileJSON(t *testing.T) {
	p := discord.Profile{
		ID:           "42",
		Username:     "alice",
		Provider:     discord.ProviderName,
		AccessToken:  "secret-access",
		RefreshToken: "secret-refresh",
		Guilds:       []discord.Guild{},
	}

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret-access")
	require.NotContains(t, string(raw), "secret-refresh")

	var back discord.Profile
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, "42", back.ID)
	require.False(t, back.HasConnections())
}

func TestDisplayName(t *testing.T) {
	p := discord.Profile{Username: "alice"}
	require.Equal(t, "alice", p.DisplayName())

	g := "Alice"
	p.GlobalName = &g
	require.Equal(t, "Alice", p.DisplayName())
}
