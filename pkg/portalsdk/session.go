package portalsdk

import (
	"context"
	"net/http"
	"strconv"
)

// Me returns the signed in user.
func (s *Session) Me(ctx context.Context) (*MeResponse, error) {
	resp, err := s.doSessionRequest(ctx, http.MethodGet, "/v1/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var me MeResponse
	if err := decodeJSON(resp, &me, http.StatusOK); err != nil {
		return nil, err
	}
	return &me, nil
}

// JoinGuild asks the portal to add the user to its configured guild. The
// roles given to the new member are fixed by the portal's configuration.
func (s *Session) JoinGuild(ctx context.Context) (*GuildJoinResponse, error) {
	resp, err := s.doSessionRequest(ctx, http.MethodPost, "/v1/guilds/join", nil, nil)
	if err != nil {
		return nil, err
	}

	var out GuildJoinResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GuildJoins lists recent join attempts, newest first.
func (s *Session) GuildJoins(ctx context.Context, limit int) (*GuildJoinsResponse, error) {
	path := "/v1/guilds/joins"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	resp, err := s.doSessionRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var out GuildJoinsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the session server side.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.doSessionRequest(ctx, http.MethodPost, "/logout", nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
