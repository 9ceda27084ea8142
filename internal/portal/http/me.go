package http

import (
	"errors"
	"net/http"

	"github.com/marabinga/passport-dc/internal/portal/service"
	"github.com/marabinga/passport-dc/pkg/httpx"
	"github.com/marabinga/passport-dc/pkg/portalsdk"
	"github.com/marabinga/passport-dc/pkg/slogx"
)

type MeHandler struct {
	UserService    *service.UserService
	SessionService *service.SessionService
}

// ServeHTTP returns the signed in user.
//
//	@Summary		Current user
//	@Description	Returns the stored Discord profile of the session's user. Tokens are never included.
//	@Tags			Users
//	@Security		SessionCookie
//	@Produce		json
//	@Success		200	{object}	portalsdk.MeResponse
//	@Failure		401	{object}	portalsdk.ErrorResponse	"Missing or invalid session"
//	@Failure		500	{object}	portalsdk.ErrorResponse	"Internal server error"
//	@Router			/v1/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok || userID == "" {
		portalsdk.ErrInvalidSession.WriteError(w)
		return
	}
	sid, _ := httpx.SessionIDFromContext(ctx)

	user, err := h.UserService.GetUserByID(ctx, userID)
	if errors.Is(err, service.ErrUserNotFound) {
		// The user row was deleted underneath a live cookie.
		portalsdk.ErrInvalidSession.WriteError(w)
		return
	}
	if err != nil {
		log.Warn("failed to load user", "user_id", userID, "err", err)
		portalsdk.ErrServerError.WriteError(w)
		return
	}

	sess, err := h.SessionService.GetSession(ctx, sid)
	if err != nil {
		log.Warn("failed to load session", "sid", sid, "err", err)
		portalsdk.ErrInvalidSession.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, portalsdk.MeResponse{
		UserID:           user.ID,
		Username:         user.Username,
		GlobalName:       user.GlobalName,
		Email:            user.Email,
		AvatarURL:        user.AvatarURL,
		Scopes:           user.Scopes,
		Profile:          user.Profile,
		FetchedAt:        user.FetchedAt,
		SessionID:        sess.ID,
		SessionExpiresAt: sess.ExpiresAt,
	})
}
