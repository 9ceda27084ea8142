package http

import (
	"net/http"
	"time"

	"github.com/marabinga/passport-dc/pkg/httpx"
	"github.com/marabinga/passport-dc/pkg/portalsdk"
)

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe; always 200 while the process is serving
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	portalsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, portalsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
