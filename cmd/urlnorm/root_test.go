package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devraulu/urlnorm/pkg/linkset"
	"github.com/devraulu/urlnorm/pkg/normalize"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestNormalizeArgs(t *testing.T) {
	out, _, err := run(t, "", "normalize", "sindresorhus.com", "HTTP://www.Example.com/?b=2&a=1")
	require.NoError(t, err)
	assert.Equal(t, "http://sindresorhus.com\nhttp://example.com/?a=1&b=2\n", out)
}

func TestNormalizeStdin(t *testing.T) {
	out, stderr, err := run(t, "a.example\n\n# note\nhttp://\n//b.example/\n", "normalize", "-w", "3")
	assert.EqualError(t, err, "1 of 3 inputs could not be normalized")
	assert.Equal(t, "http://a.example\nhttp://b.example\n", out)
	assert.Contains(t, stderr, "http://: Invalid URL: http://")
}

func TestNormalizeInputFile(t *testing.T) {
	path := writeFile(t, "urls.txt", "sindresorhus.com/?\nsindresorhus.com:80/foo/\n")
	out, _, err := run(t, "", "normalize", "--input", path)
	require.NoError(t, err)
	assert.Equal(t, "http://sindresorhus.com\nhttp://sindresorhus.com/foo\n", out)
}

func TestNormalizeFlags(t *testing.T) {
	out, _, err := run(t, "", "normalize", "--force-https", "--strip-www=false", "--keep-query-parameters", "id",
		"http://www.sindresorhus.com/?id=1&utm_source=x&ref=y")
	require.NoError(t, err)
	assert.Equal(t, "https://www.sindresorhus.com/?id=1\n", out)
}

func TestNormalizeConfigFile(t *testing.T) {
	path := writeFile(t, "config.toml", `
[normalize]
strip_protocol = true
remove_query_parameters = true
`)
	out, _, err := run(t, "", "--config", path, "normalize", "https://www.sindresorhus.com/about/?a=1")
	require.NoError(t, err)
	assert.Equal(t, "sindresorhus.com/about\n", out)

	// flags win over the file
	out, _, err = run(t, "", "--config", path, "normalize", "--strip-protocol=false", "https://sindresorhus.com")
	require.NoError(t, err)
	assert.Equal(t, "https://sindresorhus.com\n", out)
}

func TestNormalizeJSON(t *testing.T) {
	out, _, err := run(t, "", "-o", "json", "normalize", "sindresorhus.com", "http://")
	assert.Error(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var ok, bad normalizeRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ok))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &bad))
	assert.Equal(t, normalizeRecord{Input: "sindresorhus.com", Normalized: "http://sindresorhus.com"}, ok)
	assert.Equal(t, normalizeRecord{Input: "http://", Error: "Invalid URL: http://"}, bad)
}

func TestNormalizeYAML(t *testing.T) {
	out, _, err := run(t, "", "-o", "yaml", "normalize", "sindresorhus.com", "github.com")
	require.NoError(t, err)
	assert.Contains(t, out, "input: sindresorhus.com\nnormalized: http://sindresorhus.com\n")
	assert.Contains(t, out, "---\n")
	assert.Contains(t, out, "normalized: http://github.com\n")
}

func TestSetupErrors(t *testing.T) {
	_, _, err := run(t, "", "normalize", "--force-http", "--force-https", "x.com")
	assert.ErrorIs(t, err, normalize.ErrForceProtocolConflict)

	_, _, err = run(t, "", "-o", "xml", "normalize", "x.com")
	assert.ErrorContains(t, err, "unknown output format")

	_, _, err = run(t, "", "--config", filepath.Join(t.TempDir(), "missing.toml"), "normalize", "x.com")
	assert.ErrorContains(t, err, "couldn't load config")

	_, _, err = run(t, "", "normalize", "--empty-query-value", "sometimes", "x.com")
	assert.ErrorContains(t, err, "empty_query_value")

	_, _, err = run(t, "", "normalize", "--remove-query-parameters", "/(/", "x.com")
	assert.ErrorContains(t, err, "remove_query_parameters")
}

const dupes = `# crawl seeds
https://www.example.com/
http://example.com
https://b.example/one?utm_source=x
b.example/one
https://a.example/
`

func TestDedupe(t *testing.T) {
	path := writeFile(t, "links.txt", dupes)

	out, _, err := run(t, "", "dedupe", path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com\nhttp://example.com\nhttps://b.example/one\nhttp://b.example/one\nhttps://a.example\n", out)

	out, _, err = run(t, "", "dedupe", "--force-https", "--by-host", path)
	require.NoError(t, err)
	assert.Equal(t, "example.com\n  https://example.com\nb.example\n  https://b.example/one\na.example\n  https://a.example\n", out)
}

func TestDedupeStdin(t *testing.T) {
	fromFile, _, err := run(t, "", "dedupe", writeFile(t, "links.txt", dupes))
	require.NoError(t, err)

	fromStdin, _, err := run(t, dupes, "dedupe", "-")
	require.NoError(t, err)
	assert.Equal(t, fromFile, fromStdin)
}

func TestDedupeJSON(t *testing.T) {
	path := writeFile(t, "links.txt", dupes)

	out, _, err := run(t, "", "-o", "json", "dedupe", "--force-https", path)
	require.NoError(t, err)

	var links []linkset.Link
	require.NoError(t, json.Unmarshal([]byte(out), &links))
	require.Len(t, links, 3)
	assert.Equal(t, linkset.Link{
		Original:   "https://www.example.com/",
		Normalized: "https://example.com",
		Host:       "example.com",
		RobotsURL:  "https://example.com/robots.txt",
	}, links[0])
}

func TestDedupeErrors(t *testing.T) {
	_, _, err := run(t, "", "dedupe", writeFile(t, "empty.txt", "# nothing\n"))
	assert.ErrorIs(t, err, linkset.ErrNoLinks)

	_, _, err = run(t, "", "dedupe", "--store", writeFile(t, "links.txt", dupes))
	assert.ErrorIs(t, err, errNoDSN)

	_, _, err = run(t, "", "dedupe")
	assert.Error(t, err)

	_, _, err = run(t, "", "dedupe", filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtract(t *testing.T) {
	page := `<html><head><title>Links</title></head><body>
<a href="/about/">About</a>
<a href="about">Same</a>
<a href="https://www.other.example/?utm_medium=x">Other</a>
<a href="mailto:me@example.com">Mail</a>
</body></html>`
	path := writeFile(t, "page.html", page)

	out, _, err := run(t, "", "extract", "--base", "https://example.com/", path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/about\nhttps://other.example\n", out)

	out, _, err = run(t, page, "-o", "json", "extract", "--base", "https://example.com/", "-")
	require.NoError(t, err)

	var links []linkset.Link
	require.NoError(t, json.Unmarshal([]byte(out), &links))
	require.Len(t, links, 2)
	assert.Equal(t, "https://example.com/", links[0].Referrer)
}

func TestExtractRequiresBase(t *testing.T) {
	_, _, err := run(t, "", "extract", writeFile(t, "page.html", "<a href='/'>"))
	assert.ErrorContains(t, err, "base")
}

func TestMigrateRequiresDSN(t *testing.T) {
	_, _, err := run(t, "", "migrate")
	assert.ErrorIs(t, err, errNoDSN)

	_, _, err = run(t, "", "migrate", "sideways")
	assert.Error(t, err)
}
