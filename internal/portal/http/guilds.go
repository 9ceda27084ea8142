package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/marabinga/passport-dc/internal/portal/domain"
	"github.com/marabinga/passport-dc/internal/portal/service"
	"github.com/marabinga/passport-dc/pkg/discord"
	"github.com/marabinga/passport-dc/pkg/httpx"
	"github.com/marabinga/passport-dc/pkg/portalsdk"
	"github.com/marabinga/passport-dc/pkg/slogx"
)

type GuildHandler struct {
	GuildService *service.GuildService
	UserService  *service.UserService
}

// HandleJoin adds the signed in user to the configured guild. The request
// body is ignored; roles come from DISCORD_JOIN_ROLES.
//
//	@Summary		Join the guild
//	@Description	Adds the user to the configured guild with the bot token. Requires the guilds.join scope.
//	@Description	A refusal by Discord answers 502; the session stays valid.
//	@Tags			Guilds
//	@Security		SessionCookie
//	@Produce		json
//	@Success		200		{object}	portalsdk.GuildJoinResponse
//	@Failure		401		{object}	portalsdk.ErrorResponse	"Missing or invalid session"
//	@Failure		403		{object}	portalsdk.ErrorResponse	"guilds.join not granted"
//	@Failure		404		{object}	portalsdk.ErrorResponse	"Guild joining not configured"
//	@Failure		502		{object}	portalsdk.ErrorResponse	"Discord refused the join"
//	@Router			/v1/guilds/join [post].
func (h *GuildHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok || userID == "" {
		portalsdk.ErrInvalidSession.WriteError(w)
		return
	}

	rec, err := h.GuildService.Join(ctx, userID)
	var joinErr *discord.GuildJoinError
	switch {
	case err == nil:
	case errors.Is(err, service.ErrGuildJoinDisabled):
		portalsdk.ErrGuildJoinDisabled.WriteError(w)
		return
	case errors.Is(err, service.ErrScopeNotGranted):
		portalsdk.ErrInsufficientScope.WithDescription("guilds.join was not granted at login").WriteError(w)
		return
	case errors.Is(err, service.ErrUserNotFound):
		portalsdk.ErrInvalidSession.WriteError(w)
		return
	case errors.As(err, &joinErr):
		portalsdk.ErrGuildJoinFailed.WithDescription(err.Error()).WriteError(w)
		return
	default:
		log.Error("guild join failed", "user_id", userID, "err", err)
		portalsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toGuildJoinResponse(rec))
}

// HandleList returns recent join attempts of the signed in user.
//
//	@Summary		List guild joins
//	@Description	Returns the user's recent guild join attempts, newest first.
//	@Tags			Guilds
//	@Security		SessionCookie
//	@Produce		json
//	@Param			limit	query		int	false	"At most 100, default 20"
//	@Success		200		{object}	portalsdk.GuildJoinsResponse
//	@Failure		401		{object}	portalsdk.ErrorResponse	"Missing or invalid session"
//	@Router			/v1/guilds/joins [get].
func (h *GuildHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok || userID == "" {
		portalsdk.ErrInvalidSession.WriteError(w)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	joins, err := h.UserService.GuildJoins(ctx, userID, limit)
	if err != nil {
		slogx.FromContext(ctx).Error("list guild joins failed", "user_id", userID, "err", err)
		portalsdk.ErrServerError.WriteError(w)
		return
	}

	out := portalsdk.GuildJoinsResponse{Joins: make([]portalsdk.GuildJoinResponse, 0, len(joins))}
	for _, j := range joins {
		out.Joins = append(out.Joins, toGuildJoinResponse(j))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func toGuildJoinResponse(j domain.GuildJoin) portalsdk.GuildJoinResponse {
	return portalsdk.GuildJoinResponse{
		ID:         j.ID,
		GuildID:    j.GuildID,
		UserID:     j.UserID,
		Success:    j.Success,
		StatusCode: j.StatusCode,
		Error:      j.Error,
		CreatedAt:  j.CreatedAt,
	}
}
