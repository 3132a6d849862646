package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl string   `json:"base_url"`
	IDs     []string `json:"ids"`
	DelayMs *int     `json:"delay_ms"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	err := os.WriteFile(path, []byte(contents), 0600)
	require.NoError(t, err)
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, "catalog.local.json5", LocalPath("catalog.json5"))
	require.Equal(t, "/etc/x/config.local.json", LocalPath("/etc/x/config.json"))
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "catalog.json5")
	writeFile(t, name, `{
		// comments and trailing commas are allowed
		base_url: "http://localhost:5000",
		ids: ["0000012345"],
	}`)
	writeFile(t, filepath.Join(dir, "catalog.local.json5"), `{ base_url: "http://catalog.internal:8080" }`)

	config, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "http://catalog.internal:8080", config.BaseUrl)
	require.Equal(t, []string{"0000012345"}, config.IDs)
}

func TestReadConfigLocalZeroPointer(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "catalog.json5")
	writeFile(t, name, `{ base_url: "http://localhost:5000", delay_ms: 500 }`)
	writeFile(t, filepath.Join(dir, "catalog.local.json5"), `{ delay_ms: 0 }`)

	config, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:5000", config.BaseUrl)
	require.NotNil(t, config.DelayMs)
	require.Equal(t, 0, *config.DelayMs)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "nothing.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigInvalid(t *testing.T) {
	name := filepath.Join(t.TempDir(), "broken.json5")
	writeFile(t, name, `{ base_url: `)

	_, err := ReadConfig[testConfig](name)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestReadWithDefaults(t *testing.T) {
	zero := 0
	second := 1000
	defaults := testConfig{
		BaseUrl: "http://localhost:5000",
		IDs:     []string{"a", "b"},
		DelayMs: &second,
	}

	testCases := []struct {
		name     string
		contents string
		expected testConfig
	}{
		{
			name:     "missing file",
			expected: defaults,
		},
		{
			name:     "partial file",
			contents: `{ ids: ["c"] }`,
			expected: testConfig{
				BaseUrl: "http://localhost:5000",
				IDs:     []string{"c"},
				DelayMs: &second,
			},
		},
		{
			name:     "explicit zero delay is kept",
			contents: `{ delay_ms: 0 }`,
			expected: testConfig{
				BaseUrl: "http://localhost:5000",
				IDs:     []string{"a", "b"},
				DelayMs: &zero,
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			name := filepath.Join(t.TempDir(), "catalog.json5")
			if test.contents != "" {
				writeFile(t, name, test.contents)
			}
			config, err := ReadWithDefaults(name, defaults)
			require.NoError(t, err)
			diff := cmp.Diff(test.expected, config)
			if diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0700))
	writeFile(t, filepath.Join(root, "telemetry.json5"), `{ base_url: "found" }`)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { os.Chdir(wd) })

	config, err := ReadRecursively[testConfig]("telemetry.json5")
	require.NoError(t, err)
	require.Equal(t, "found", config.BaseUrl)
}
