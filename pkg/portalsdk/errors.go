package portalsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/marabinga/passport-dc/pkg/httpx"
)

const (
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeInvalidSession    = "invalid_session"
	ErrorCodeInsufficientScope = "insufficient_scope"
	ErrorCodeNotFound          = "not_found"
	ErrorCodeServerError       = "server_error"
	ErrorCodeGuildJoinFailed   = "guild_join_failed"
	ErrorCodeGuildJoinDisabled = "guild_join_disabled"
	ErrorCodeRateLimited       = "rate_limit_exceeded"
)

// APIError is a portal error response. Handlers write it and the Client
// returns it.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes e as a JSON error response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Description)
}

// WithDescription returns a copy of e with a different description.
func (e *APIError) WithDescription(desc string) *APIError {
	c := *e
	c.Description = desc
	return &c
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed",
	}

	ErrInvalidSession = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidSession,
		Description: "the session is missing, invalid or expired",
	}

	ErrInsufficientScope = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeInsufficientScope,
		Description: "the session does not have the required scopes",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "not found",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}

	ErrGuildJoinFailed = &APIError{
		StatusCode:  http.StatusBadGateway,
		Code:        ErrorCodeGuildJoinFailed,
		Description: "discord refused to add the user to the guild",
	}

	ErrGuildJoinDisabled = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeGuildJoinDisabled,
		Description: "guild joining is not configured",
	}
)

// parseErrorResponse turns a non-2xx response into an *APIError. Bodies that
// are not portal errors fall back to the status text.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
