package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devraulu/urlnorm/pkg/normalize"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `dsn = "postgres://localhost/urlnorm"`))
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/urlnorm", cfg.DSN)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.Web.Addr)
	assert.GreaterOrEqual(t, cfg.Batch.Workers, 1)

	opts, err := cfg.NormalizeOptions()
	require.NoError(t, err)

	out, err := normalize.Normalize("www.sindresorhus.com/?utm_source=x&b=2&a=1", opts)
	require.NoError(t, err)
	assert.Equal(t, "http://sindresorhus.com/?a=1&b=2", out)
}

func TestLoadNormalizeSection(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[batch]
workers = 0
input_file = "urls.txt"

[normalize]
strip_www = false
force_https = true
remove_query_parameters = ["ref", "/^utm_\\w+/i"]
remove_directory_index = true
empty_query_value = "never"
`))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Batch.Workers)
	assert.Equal(t, "urls.txt", cfg.Batch.InputFile)

	opts, err := cfg.NormalizeOptions()
	require.NoError(t, err)
	assert.True(t, opts.ForceHTTPS)
	assert.False(t, opts.StripWWW)
	assert.Equal(t, normalize.EmptyValueNever, opts.EmptyQueryValue)
	assert.Len(t, opts.RemoveDirectoryIndex, 1)

	out, err := normalize.Normalize("http://www.example.com/index.html?ref=a&UTM_x=1&keep=", opts)
	require.NoError(t, err)
	assert.Equal(t, "https://www.example.com/?keep", out)
}

func TestNormalizeOptionsQueryModes(t *testing.T) {
	cfg := Default()
	cfg.Normalize.RemoveQueryParams = true
	opts, err := cfg.NormalizeOptions()
	require.NoError(t, err)
	assert.True(t, opts.RemoveAllQueryParameters)

	cfg.Normalize.RemoveQueryParams = false
	opts, err = cfg.NormalizeOptions()
	require.NoError(t, err)
	assert.False(t, opts.RemoveAllQueryParameters)
	assert.Empty(t, opts.RemoveQueryParameters)

	keep := []string{}
	cfg.Normalize.KeepQueryParams = &keep
	opts, err = cfg.NormalizeOptions()
	require.NoError(t, err)
	assert.NotNil(t, opts.KeepQueryParameters)
	assert.Empty(t, opts.KeepQueryParameters)
}

func TestNormalizeOptionsErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NormalizeConfig)
		errMsg string
	}{
		{"force conflict", func(n *NormalizeConfig) { n.ForceHTTP, n.ForceHTTPS = true, true }, "cannot be used together"},
		{"empty value mode", func(n *NormalizeConfig) { n.EmptyQueryValue = "sometimes" }, "empty_query_value"},
		{"bad regex", func(n *NormalizeConfig) { n.RemoveQueryParams = []any{"/(/"} }, "remove_query_parameters"},
		{"not a list", func(n *NormalizeConfig) { n.RemoveDirectoryIdx = "index" }, "remove_directory_index"},
		{"non string entry", func(n *NormalizeConfig) { n.RemoveQueryParams = []any{int64(1)} }, "expected strings"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg.Normalize)
			_, err := cfg.NormalizeOptions()
			assert.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "[normalize]\nempty_query_value = \"bogus\"\n"))
	assert.ErrorContains(t, err, "empty_query_value")
}

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.example.toml"))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Batch.Workers)

	opts, err := cfg.NormalizeOptions()
	require.NoError(t, err)
	assert.True(t, opts.RemoveQueryParameters.Match("UTM_campaign"))
	assert.Empty(t, opts.RemoveDirectoryIndex)
	assert.Nil(t, opts.KeepQueryParameters)
}
