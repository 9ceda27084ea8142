package discord_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeDiscord serves the handful of REST routes the package calls. Each
// route answers with the configured status and raw body.
type fakeDiscord struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]fakeRoute
	calls    []string
	auth     []string
	lastBody map[string]any
}

type fakeRoute struct {
	status int
	body   string
}

func newFakeDiscord(t *testing.T) *fakeDiscord {
	t.Helper()
	f := &fakeDiscord{routes: map[string]fakeRoute{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/@me", f.handle("me"))
	mux.HandleFunc("GET /api/users/@me/connections", f.handle("connections"))
	mux.HandleFunc("GET /api/users/@me/guilds", f.handle("guilds"))
	mux.HandleFunc("PUT /api/guilds/{guild}/members/{user}", f.handle("join"))

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeDiscord) set(route string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[route] = fakeRoute{status: status, body: body}
}

func (f *fakeDiscord) handle(route string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls = append(f.calls, r.Method+" "+r.URL.Path)
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			if len(raw) > 0 {
				f.lastBody = map[string]any{}
				_ = json.Unmarshal(raw, &f.lastBody)
			}
		}
		rt, ok := f.routes[route]
		f.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		if rt.body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(rt.status)
		_, _ = io.WriteString(w, rt.body)
	}
}

func (f *fakeDiscord) apiURL() string { return f.URL + "/api" }

func (f *fakeDiscord) recordedCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeDiscord) recordedAuth() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.auth...)
}

func (f *fakeDiscord) body() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastBody
}
