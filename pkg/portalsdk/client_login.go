package portalsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// BeginLogin starts the Discord login and returns the authorize URL the
// browser would be sent to, together with the state cookie the callback
// expects back.
func (c *Client) BeginLogin(ctx context.Context) (*url.URL, []*http.Cookie, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/auth/discord", nil, nil)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		return nil, nil, parseErrorResponse(resp, nil)
	}

	loc, err := resp.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("missing authorize redirect: %w", err)
	}
	return loc, resp.Cookies(), nil
}
