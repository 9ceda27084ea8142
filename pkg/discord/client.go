package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/marabinga/passport-dc/pkg/slogx"
)

// DefaultUserAgent follows Discord's "DiscordBot (url, version)" convention,
// which bot-authenticated calls are required to send.
const DefaultUserAgent = "DiscordBot (https://github.com/marabinga/passport-dc, 1.0)"

const maxResponseBody = 4 << 20

// ClientOptions configure a Client. Zero values pick the Discord defaults.
type ClientOptions struct {
	APIBaseURL string
	CDNBaseURL string
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
	Logger     *slog.Logger
}

// Client talks to the Discord REST API. It is safe for concurrent use and
// holds no per-user state.
type Client struct {
	apiBase   string
	cdnBase   string
	http      *http.Client
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
}

// DefaultClient backs the package-level AddUserToGuild.
var DefaultClient = NewClient(ClientOptions{})

func NewClient(opts ClientOptions) *Client {
	c := &Client{
		apiBase:   strings.TrimRight(opts.APIBaseURL, "/"),
		cdnBase:   strings.TrimRight(opts.CDNBaseURL, "/"),
		http:      opts.HTTPClient,
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		logger:    opts.Logger,
	}
	if c.apiBase == "" {
		c.apiBase = DefaultAPIBaseURL
	}
	if c.cdnBase == "" {
		c.cdnBase = DefaultCDNBaseURL
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.logger == nil {
		c.logger = slogx.Discard()
	}
	return c
}

// CDNBaseURL is the base used for avatar URLs.
func (c *Client) CDNBaseURL() string { return c.cdnBase }

// CurrentUser loads /users/@me. Failures are *ProfileFetchError or
// *ParseError with Resource "profile".
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*Profile, error) {
	body, err := c.get(ctx, "/users/@me", accessToken)
	if err != nil {
		return nil, &ProfileFetchError{Err: err}
	}

	var p Profile
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &ParseError{Resource: "profile", Err: err}
	}
	if p.ID == "" {
		return nil, &ParseError{Resource: "profile", Err: errors.New("response has no id")}
	}
	p.Raw = body
	return &p, nil
}

// UserConnections loads /users/@me/connections. A JSON null answer yields
// a nil slice.
func (c *Client) UserConnections(ctx context.Context, accessToken string) ([]Connection, error) {
	var out []Connection
	if err := c.getList(ctx, ScopeConnections, accessToken, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserGuilds loads /users/@me/guilds. A JSON null answer yields a nil slice.
func (c *Client) UserGuilds(ctx context.Context, accessToken string) ([]Guild, error) {
	var out []Guild
	if err := c.getList(ctx, ScopeGuilds, accessToken, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getList(ctx context.Context, scope, accessToken string, dst any) error {
	body, err := c.get(ctx, "/users/@me/"+scope, accessToken)
	if err != nil {
		return &ScopeFetchError{Scope: scope, Err: err}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &ScopeFetchError{Scope: scope, Err: &ParseError{Resource: scope, Err: err}}
	}
	return nil
}

// get issues a bearer-authenticated GET. Any non-2xx answer is a *StatusError.
func (c *Client) get(ctx context.Context, path, accessToken string) ([]byte, error) {
	status, body, err := c.do(ctx, http.MethodGet, path, "Bearer "+accessToken, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, newStatusError(status, body)
	}
	return body, nil
}

// do sends one request under its own deadline and returns the status and
// body. Only transport failures are errors here.
func (c *Client) do(ctx context.Context, method, path, authorization string, payload []byte) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.apiBase + path

	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return 0, nil, &TransportError{Method: method, URL: url, Err: err}
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("discord request failed", "method", method, "path", path, "err", err)
		return 0, nil, &TransportError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return 0, nil, &TransportError{Method: method, URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("discord request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return resp.StatusCode, body, nil
}
