package populate

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"bookcatalog/lib/catalog"
	"bookcatalog/lib/catalog/catalogtest"
	"bookcatalog/lib/report"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func testConfig(server *catalogtest.Server) Config {
	cfg := DefaultConfig()
	cfg.BaseUrl = server.URL
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "http://localhost:5000", cfg.BaseUrl)
	require.Equal(t, "learner", cfg.Username)
	require.Equal(t, "p@ssword", cfg.Password)
	require.Equal(t, catalog.SampleBooks(), cfg.Books)
}

func TestRunSubmitsEveryBook(t *testing.T) {
	server := catalogtest.NewServer(t, catalogtest.Options{})

	var out bytes.Buffer
	err := Run(context.Background(), testConfig(server), &out)
	require.NoError(t, err)

	require.Equal(t, 1, server.TokensIssued())
	require.Equal(t, []catalogtest.DigestAttempt{
		{Username: "learner", Valid: true},
	}, server.DigestAttempts())

	expected := []catalogtest.Created{}
	for _, book := range catalog.SampleBooks() {
		expected = append(expected, catalogtest.Created{
			Authorization: "Bearer " + server.Token(),
			Book:          book,
		})
	}
	diff := cmp.Diff(expected, server.Created())
	if diff != "" {
		t.Fatal(diff)
	}

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	require.Equal(
		t,
		`added new book: {"id":"0000012345","title":"2132: Evolution","genre":"sci-fi"}`,
		lines[0],
	)
}

func TestRunWrongCredentials(t *testing.T) {
	server := catalogtest.NewServer(t, catalogtest.Options{Password: "rotated"})

	var out bytes.Buffer
	err := Run(context.Background(), testConfig(server), &out)
	require.ErrorIs(t, err, catalog.ErrUnexpectedStatus)
	require.Empty(t, server.Created())
	require.Empty(t, out.String())
}

func TestRunStopsAtFirstFailedCreate(t *testing.T) {
	server := catalogtest.NewServer(t, catalogtest.Options{
		CreateStatus: http.StatusInternalServerError,
	})

	var out bytes.Buffer
	err := Run(context.Background(), testConfig(server), &out)
	require.ErrorIs(t, err, catalog.ErrUnexpectedStatus)
	require.Len(t, server.Created(), 1)
	require.Empty(t, out.String())
}

func TestRunPaced(t *testing.T) {
	server := catalogtest.NewServer(t, catalogtest.Options{})
	cfg := testConfig(server)
	cfg.Books = cfg.Books[:3]
	cfg.RequestsPerSecond = 20

	start := time.Now()
	err := Run(context.Background(), cfg, &bytes.Buffer{})
	require.NoError(t, err)
	// burst of 1: the 2nd and 3rd submissions each wait 50ms
	require.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	require.Len(t, server.Created(), 3)
}

func TestRunInvalidBaseUrl(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseUrl = "::"
	err := Run(context.Background(), cfg, &bytes.Buffer{})
	require.Error(t, err)
}

func TestPopulatedCatalogIsReadable(t *testing.T) {
	server := catalogtest.NewServer(t, catalogtest.Options{})
	err := Run(context.Background(), testConfig(server), &bytes.Buffer{})
	require.NoError(t, err)

	cfg := report.DefaultConfig()
	cfg.BaseUrl = server.URL
	cfg.Delay = 0

	var out bytes.Buffer
	err = report.Run(context.Background(), cfg, &out)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(
		out.String(),
		"ID: 0000012345\nTITLE: 2132: Evolution\nGENRE: sci-fi\n\n",
	))
	require.Equal(t, 6, strings.Count(out.String(), "GENRE: "))
	require.NotContains(t, out.String(), "TITLE: \n")
}
