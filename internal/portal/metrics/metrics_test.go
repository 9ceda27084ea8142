package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/marabinga/passport-dc/internal/portal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := metrics.New()
	m.ObserveLogin(metrics.LoginSuccess)
	m.ObserveLogin(metrics.LoginSuccess)
	m.ObserveLogin(metrics.LoginDenied)
	m.ObserveGuildJoin(metrics.JoinRejected)
	m.ObserveSessionsSwept(3)

	expected := `
# HELP passport_logins_total Discord login completions by outcome.
# TYPE passport_logins_total counter
passport_logins_total{result="denied"} 1
passport_logins_total{result="success"} 2
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "passport_logins_total"))

	n, err := testutil.GatherAndCount(m.Registry(), "passport_guild_joins_total", "passport_sessions_swept_total")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestInstrumentClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	m := metrics.New()
	client := m.InstrumentClient(nil)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	expected := `
# HELP passport_discord_requests_total Outbound requests to Discord by status code and method.
# TYPE passport_discord_requests_total counter
passport_discord_requests_total{code="204",method="get"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "passport_discord_requests_total"))
}

func TestHandler(t *testing.T) {
	m := metrics.New()
	m.ObserveLogin(metrics.LoginSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	require.Contains(t, string(body), `passport_logins_total{result="success"} 1`)
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics
	m.ObserveLogin(metrics.LoginSuccess)
	m.ObserveGuildJoin(metrics.JoinSuccess)
	m.ObserveSessionsSwept(1)
	require.NotNil(t, m.InstrumentClient(nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
