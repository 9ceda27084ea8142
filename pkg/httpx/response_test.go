package httpx_test

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marabinga/passport-dc/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestWriteHTML(t *testing.T) {
	t.Run("renders escaped page", func(t *testing.T) {
		tmpl := template.Must(template.New("t").Parse(`<p>{{.}}</p>`))
		rec := httptest.NewRecorder()
		httpx.WriteHTML(rec, http.StatusOK, tmpl, "<script>")

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		require.Equal(t, "<p>&lt;script&gt;</p>", rec.Body.String())
	})

	t.Run("template failure is a server error", func(t *testing.T) {
		tmpl := template.Must(template.New("t").Parse(`{{.Missing}}`))
		rec := httptest.NewRecorder()
		httpx.WriteHTML(rec, http.StatusOK, tmpl, 42)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, rec.Body.String(), `"error":"server_error"`)
	})
}

func TestParseSpaceDelimitedFields(t *testing.T) {
	require.Nil(t, httpx.ParseSpaceDelimitedFields("   "))
	require.Equal(t, []string{"a", "b"}, httpx.ParseSpaceDelimitedFields(" a  b "))
}
