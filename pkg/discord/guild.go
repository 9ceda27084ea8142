package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/url"
)

// GuildMemberOptions are the optional fields of Discord's "Add Guild Member"
// body. Setting Nick, Roles, Mute or Deaf needs the matching bot permission.
type GuildMemberOptions struct {
	Nick  string
	Roles []string
	Mute  *bool
	Deaf  *bool

	// Extra is merged into the body before the typed fields, for anything
	// not modelled above.
	Extra map[string]any
}

// GuildJoinRequest is one call to AddUserToGuild. All string fields are
// required.
type GuildJoinRequest struct {
	GuildID     string
	UserID      string
	AccessToken string
	BotToken    string
	Options     *GuildMemberOptions
}

func (r GuildJoinRequest) body() map[string]any {
	body := map[string]any{}
	if o := r.Options; o != nil {
		maps.Copy(body, o.Extra)
		if o.Nick != "" {
			body["nick"] = o.Nick
		}
		if o.Roles != nil {
			body["roles"] = o.Roles
		}
		if o.Mute != nil {
			body["mute"] = *o.Mute
		}
		if o.Deaf != nil {
			body["deaf"] = *o.Deaf
		}
	}
	body["access_token"] = r.AccessToken
	return body
}

// AddUserToGuild adds the user to the guild with the bot token. 201 (added)
// and 204 (already a member) succeed; everything else is a *GuildJoinError.
func (c *Client) AddUserToGuild(ctx context.Context, req GuildJoinRequest) error {
	fail := func(status int, body []byte, err error) error {
		return &GuildJoinError{
			GuildID:    req.GuildID,
			UserID:     req.UserID,
			StatusCode: status,
			Body:       body,
			Err:        err,
		}
	}

	for _, arg := range []struct{ name, value string }{
		{"guild id", req.GuildID},
		{"user id", req.UserID},
		{"access token", req.AccessToken},
		{"bot token", req.BotToken},
	} {
		if arg.value == "" {
			return fail(0, nil, fmt.Errorf("%w: %s", ErrMissingArgument, arg.name))
		}
	}

	payload, err := json.Marshal(req.body())
	if err != nil {
		return fail(0, nil, fmt.Errorf("encode body: %w", err))
	}

	path := "/guilds/" + url.PathEscape(req.GuildID) + "/members/" + url.PathEscape(req.UserID)
	status, body, err := c.do(ctx, http.MethodPut, path, "Bot "+req.BotToken, payload)
	if err != nil {
		return fail(0, nil, err)
	}

	switch status {
	case http.StatusCreated, http.StatusNoContent:
		c.logger.Info("user added to guild",
			"guild_id", req.GuildID,
			"user_id", req.UserID,
			"already_member", status == http.StatusNoContent,
		)
		return nil
	default:
		return fail(status, body, newStatusError(status, body))
	}
}

// AddUserToGuild is Client.AddUserToGuild on DefaultClient.
func AddUserToGuild(ctx context.Context, guildID, userID, accessToken, botToken string, opts *GuildMemberOptions) error {
	return DefaultClient.AddUserToGuild(ctx, GuildJoinRequest{
		GuildID:     guildID,
		UserID:      userID,
		AccessToken: accessToken,
		BotToken:    botToken,
		Options:     opts,
	})
}
