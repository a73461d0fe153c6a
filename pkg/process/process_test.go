package process

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!doctype html>
<html>
<head>
  <title> Example page </title>
  <link rel="stylesheet" href="/style.css">
  <link rel="canonical" href="https://www.example.com/page/">
</head>
<body>
  <a href="/about">About</a>
  <a href="  other.html?utm_source=x ">Other</a>
  <a href="mailto:someone@example.com">Mail</a>
  <a href="javascript:void(0)">JS</a>
  <a>No href</a>
  <a href="">Empty</a>
  <map><area href="https://Example.com:443/area"></map>
  <a href="#top">Top</a>
</body>
</html>`

func TestExtractLinks(t *testing.T) {
	res, err := ExtractLinks(strings.NewReader(page), "https://www.example.com/dir/index.html")
	require.NoError(t, err)

	assert.Equal(t, "Example page", res.Title)
	assert.Equal(t, []string{
		"https://www.example.com/page/",
		"https://www.example.com/about",
		"https://www.example.com/dir/other.html?utm_source=x",
		"https://Example.com:443/area",
		"https://www.example.com/dir/index.html#top",
	}, res.Outlinks)
}

func TestExtractLinksHonorsBase(t *testing.T) {
	doc := `<html><head><base href="http://cdn.example.org/root/"></head>
<body><a href="x">x</a><a href="/y">y</a></body></html>`

	res, err := ExtractLinks(strings.NewReader(doc), "https://www.example.com/")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://cdn.example.org/root/x", "http://cdn.example.org/y"}, res.Outlinks)
	assert.Empty(t, res.Title)
}

func TestExtractLinksBadBase(t *testing.T) {
	_, err := ExtractLinks(strings.NewReader("<a href='/'>"), "http://[::1")
	assert.Error(t, err)
}

func TestRobotsURL(t *testing.T) {
	got, err := RobotsURL("https://example.com/a/b?c=d#e")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/robots.txt", got)

	_, err = RobotsURL("http://[::1")
	assert.Error(t, err)
}
