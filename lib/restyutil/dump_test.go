package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestDumpWritesExchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)

	dir := filepath.Join(t.TempDir(), "dump")
	dump, err := NewDump(dir)
	require.NoError(t, err)

	client := resty.New().SetBaseURL(server.URL)
	dump.Attach(client)

	_, err = client.R().
		SetAuthToken("secret").
		SetHeader("Content-Type", "application/json").
		SetBody(`{"id":"1"}`).
		Post("/api/books")
	require.NoError(t, err)

	contents, err := os.ReadFile(filepath.Join(dir, "001-POST-api_books.txt"))
	require.NoError(t, err)
	text := string(contents)
	require.Contains(t, text, "POST "+server.URL+"/api/books")
	require.Contains(t, text, "Authorization: Bearer <redacted>")
	require.NotContains(t, text, "secret")
	require.Contains(t, text, `{"id":"1"}`)
	require.Contains(t, text, "201 Created")
	require.Contains(t, text, `{"ok":true}`)
}

func TestFormatHeadersSorted(t *testing.T) {
	headers := http.Header{}
	headers.Add("X-B", "2")
	headers.Add("X-A", "1")
	headers.Add("X-A", "3")
	require.Equal(t, "X-A: 1\nX-A: 3\nX-B: 2", formatHeaders(headers))
}
