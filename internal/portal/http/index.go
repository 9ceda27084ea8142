package http

import (
	"html/template"
	"net/http"

	"github.com/marabinga/passport-dc/pkg/httpx"
)

var indexPage = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Passport</title></head>
<body>
{{- if .Error}}
<p role="alert">Login failed: {{.Message}} <code>{{.Error}}</code></p>
{{- end}}
<p><a href="/auth/discord">Log in with Discord</a></p>
</body>
</html>
`))

// loginFailureMessages explains the codes HandleCallback puts in ?error=.
// Codes Discord sends on its own fall back to a generic message.
var loginFailureMessages = map[string]string{
	"access_denied":   "the Discord authorization was declined.",
	"state_mismatch":  "the login link expired or was opened in another browser.",
	"invalid_request": "Discord did not return an authorization code.",
	"exchange_failed": "Discord rejected the authorization code.",
	"profile_failed":  "your Discord profile could not be loaded.",
	"server_error":    "something went wrong on our side.",
}

type indexView struct {
	Error   string
	Message string
}

// HandleIndex is the landing page and the target of failed logins. It
// always answers 200 with a login link, plus the failure when ?error= is set.
func HandleIndex(w http.ResponseWriter, r *http.Request) {
	view := indexView{Error: r.URL.Query().Get("error")}
	if view.Error != "" {
		view.Message = loginFailureMessages[view.Error]
		if view.Message == "" {
			view.Message = "Discord reported an error."
		}
	}
	httpx.WriteHTML(w, http.StatusOK, indexPage, view)
}
