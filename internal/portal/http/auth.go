package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/marabinga/passport-dc/internal/portal/metrics"
	"github.com/marabinga/passport-dc/internal/portal/service"
	"github.com/marabinga/passport-dc/pkg/discord"
	"github.com/marabinga/passport-dc/pkg/httpx"
	"github.com/marabinga/passport-dc/pkg/jwtx"
	"github.com/marabinga/passport-dc/pkg/oauth2x"
	"github.com/marabinga/passport-dc/pkg/slogx"
)

// Paths the login flow redirects to.
const (
	failureRedirect = "/"
	successRedirect = "/v1/me"
)

type AuthHandler struct {
	Engine         *oauth2x.Engine[*discord.Profile]
	Verifier       jwtx.Verifier
	LoginService   *service.LoginService
	SessionService *service.SessionService
	Metrics        *metrics.Metrics

	CookieName    string
	SecureCookies bool
}

// HandleBegin starts the Discord login.
//
//	@Summary		Start Discord login
//	@Description	Sets the state cookie and redirects to Discord's consent screen.
//	@Description	The optional prompt parameter overrides the configured prompt ("consent" or "none").
//	@Tags			Auth
//	@Param			prompt	query	string	false	"consent or none"
//	@Success		302		"Redirect to Discord"
//	@Failure		500		{object}	portalsdk.ErrorResponse	"State generation failed"
//	@Router			/auth/discord [get].
func (h *AuthHandler) HandleBegin(w http.ResponseWriter, r *http.Request) {
	ao := oauth2x.AuthorizeOptions{}
	if prompt := r.URL.Query().Get("prompt"); prompt != "" {
		ao.Extra = map[string]string{"prompt": prompt}
	}

	target, err := h.Engine.BeginAuth(w, r, ao)
	if err != nil {
		slogx.FromContext(r.Context()).Error("begin auth failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "unable to start login")
		return
	}

	httpx.NoCache(w)
	http.Redirect(w, r, target, http.StatusFound)
}

// HandleCallback finishes the Discord login.
//
//	@Summary		Discord login callback
//	@Description	Exchanges the code, fetches the profile, stores the user and sets the session cookie.
//	@Description	Failures redirect to / with an error query parameter.
//	@Tags			Auth
//	@Param			code	query	string	false	"Authorization code"
//	@Param			state	query	string	true	"State echoed by Discord"
//	@Param			error	query	string	false	"Set by Discord when the user declined"
//	@Success		302		"Redirect to /v1/me with the session cookie set"
//	@Failure		302		"Redirect to /?error=..."
//	@Router			/auth/discord/callback [get].
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	res, err := h.Engine.Complete(w, r)
	if err != nil {
		code, outcome := loginFailure(err)
		h.Metrics.ObserveLogin(outcome)
		log.Warn("discord login failed", "reason", code, "err", err)
		h.redirectFailure(w, r, code)
		return
	}

	login, err := h.LoginService.Complete(ctx, res, service.LoginMeta{
		UserAgent: r.UserAgent(),
		IP:        httpx.ClientIP(r),
	})
	if err != nil {
		// Complete records the login outcome metric on every failure path.
		log.Error("persist login failed", "err", err)
		h.redirectFailure(w, r, "server_error")
		return
	}

	httpx.SetSessionCookie(w, h.CookieName, login.Token, login.Session.ExpiresAt, h.SecureCookies)
	httpx.NoCache(w)
	http.Redirect(w, r, successRedirect, http.StatusFound)
}

// HandleLogout ends the session.
//
//	@Summary		Log out
//	@Description	Deletes the server side session and clears the cookie. Succeeds without a session.
//	@Tags			Auth
//	@Success		204	"Logged out"
//	@Failure		500	{object}	portalsdk.ErrorResponse	"Session could not be deleted"
//	@Router			/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if cookie, err := r.Cookie(h.CookieName); err == nil && cookie.Value != "" {
		// Expired or forged tokens are ignored; housekeeping sweeps expired rows.
		if claims, err := h.Verifier.Verify(cookie.Value); err == nil {
			if err := h.SessionService.Logout(ctx, claims.SID); err != nil {
				log.Error("logout failed", "sid", claims.SID, "err", err)
				httpx.WriteError(w, http.StatusInternalServerError, "server_error", "unable to end session")
				return
			}
			log.Info("user logged out", "user_id", claims.Subject, "sid", claims.SID)
		}
	}

	httpx.ClearSessionCookie(w, h.CookieName, h.SecureCookies)
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) redirectFailure(w http.ResponseWriter, r *http.Request, code string) {
	httpx.NoCache(w)
	http.Redirect(w, r, failureRedirect+"?"+url.Values{"error": {code}}.Encode(), http.StatusFound)
}

// loginFailure maps a Complete error to the redirect code and metric label.
func loginFailure(err error) (code, outcome string) {
	var (
		authErr    *oauth2x.AuthorizationError
		exchErr    *oauth2x.ExchangeError
		profileErr *oauth2x.ProfileError
	)
	switch {
	case errors.As(err, &authErr):
		return authErr.Code, metrics.LoginDenied
	case errors.Is(err, oauth2x.ErrStateMismatch):
		return "state_mismatch", metrics.LoginState
	case errors.Is(err, oauth2x.ErrMissingCode):
		return "invalid_request", metrics.LoginState
	case errors.As(err, &exchErr):
		return "exchange_failed", metrics.LoginExchange
	case errors.As(err, &profileErr):
		return "profile_failed", metrics.LoginProfile
	default:
		return "server_error", metrics.LoginExchange
	}
}

