package http

import (
	"net/http"
	"time"

	"github.com/marabinga/passport-dc/internal/portal/store"
	"github.com/marabinga/passport-dc/pkg/httpx"
	"github.com/marabinga/passport-dc/pkg/portalsdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe; pings the database and reports whether guild joining is configured
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	portalsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	portalsdk.HealthResponse	"database unreachable"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, guildJoinEnabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &portalsdk.HealthChecks{
			Database:  "ok",
			GuildJoin: "disabled",
		}
		if guildJoinEnabled {
			checks.GuildJoin = "enabled"
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, portalsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
