//go:build e2e

package portal_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/marabinga/passport-dc/pkg/portalsdk"
	"github.com/stretchr/testify/require"
)

func TestLivezEndpoint(t *testing.T) {
	baseURL, cleanup := setupPortalContainer(t, nil)
	defer cleanup()

	health, err := portalsdk.NewClient(baseURL).GetLiveness(t.Context())
	assertHealthy(t, health, err)
}

func TestReadyzEndpoint(t *testing.T) {
	t.Run("guild join disabled", func(t *testing.T) {
		baseURL, cleanup := setupPortalContainer(t, nil)
		defer cleanup()

		health, err := portalsdk.NewClient(baseURL).GetReadiness(t.Context())
		assertHealthy(t, health, err)
		require.NotNil(t, health.Checks)
		require.Equal(t, "ok", health.Checks.Database)
		require.Equal(t, "disabled", health.Checks.GuildJoin)
	})

	t.Run("guild join enabled", func(t *testing.T) {
		baseURL, cleanup := setupPortalContainer(t, map[string]string{
			"DISCORD_GUILD_ID":  "197038439483310086",
			"DISCORD_BOT_TOKEN": "not-a-real-bot-token",
		})
		defer cleanup()

		health, err := portalsdk.NewClient(baseURL).GetReadiness(t.Context())
		assertHealthy(t, health, err)
		require.Equal(t, "enabled", health.Checks.GuildJoin)
	})
}

func TestMetricsAndDocs(t *testing.T) {
	baseURL, cleanup := setupPortalContainer(t, nil)
	defer cleanup()

	for _, path := range []string{"/metrics", "/swagger/doc.json"} {
		t.Run(path, func(t *testing.T) {
			req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, baseURL+path, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, http.StatusOK, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			require.NotEmpty(t, body)
		})
	}
}
