package httpx

import (
	"net/http"
	"strings"
)

// RequireScopes rejects sessions that were not granted every listed
// Discord scope. Must run after SessionAuth.
func RequireScopes(required ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			have := make(map[string]struct{})
			for _, s := range scopesFromCtx(r.Context()) {
				have[s] = struct{}{}
			}

			var missing []string
			for _, s := range required {
				if _, ok := have[s]; !ok {
					missing = append(missing, s)
				}
			}
			if len(missing) > 0 {
				WriteError(w, http.StatusForbidden, "insufficient_scope",
					"session lacks scope: "+strings.Join(missing, " "))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
