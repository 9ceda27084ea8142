package portalsdk

import (
	"net/http"
	"strings"
	"time"

	"github.com/marabinga/passport-dc/pkg/httpx"
)

// Client talks to a portal instance.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// CookieName is the session cookie name, httpx.DefaultSessionCookie
	// when empty.
	CookieName string
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			// The login routes answer with redirects that must be seen,
			// not followed.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Session is a Client bound to one session cookie.
type Session struct {
	client *Client
	token  string
}

// WithSession binds the client to a session token as set in the session
// cookie by the login callback.
func (c *Client) WithSession(token string) *Session {
	return &Session{client: c, token: token}
}

func (c *Client) cookieName() string {
	if c.CookieName == "" {
		return httpx.DefaultSessionCookie
	}
	return c.CookieName
}
