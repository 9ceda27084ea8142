package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/marabinga/passport-dc/pkg/jwtx"
	"github.com/marabinga/passport-dc/pkg/slogx"
)

// DefaultSessionCookie is the cookie carrying the signed session token.
const DefaultSessionCookie = "passport_session"

// SessionChecker confirms a session id is still live server-side
// (not logged out, not swept). A nil checker trusts the token alone.
type SessionChecker interface {
	CheckSession(ctx context.Context, sessionID string) error
}

// SessionAuth verifies the session cookie and injects its claims.
// Failures answer 401 with a JSON error and never reach next.
func SessionAuth(v jwtx.Verifier, cookieName string, checker SessionChecker) Middleware {
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				writeSessionError(w, "missing session")
				return
			}

			claims, err := v.Verify(cookie.Value)
			if err != nil {
				log.Warn("session verify failed", "err", err)
				writeSessionError(w, "session verification failed")
				return
			}

			if checker != nil {
				if err := checker.CheckSession(ctx, claims.SID); err != nil {
					log.Info("session rejected", "sid", claims.SID, "err", err)
					writeSessionError(w, "session expired")
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(ContextWithSession(ctx, claims)))
		})
	}
}

// SetSessionCookie writes the session token cookie.
func SetSessionCookie(w http.ResponseWriter, name, token string, expires time.Time, secure bool) {
	if name == "" {
		name = DefaultSessionCookie
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(w http.ResponseWriter, name string, secure bool) {
	if name == "" {
		name = DefaultSessionCookie
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeSessionError(w http.ResponseWriter, desc string) {
	WriteError(w, http.StatusUnauthorized, "invalid_session", desc)
}
