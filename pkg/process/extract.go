// Package process pulls candidate links out of fetched documents.
package process

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

type Extraction struct {
	Title string
	// Outlinks are absolute http(s) URLs in document order, not yet
	// normalized. Duplicates are kept.
	Outlinks []string
}

// linkAttrs lists the elements whose attribute carries a navigable link.
var linkAttrs = map[string]string{
	"a":    "href",
	"area": "href",
	"link": "href",
}

// ExtractLinks parses an HTML document and resolves its links against
// baseURL, or against the document's <base href> when present.
func ExtractLinks(body io.Reader, baseURL string) (*Extraction, error) {
	doc, err := html.Parse(body)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	if newBaseStr := findBase(doc); newBaseStr != "" {
		if newBase, err := base.Parse(newBaseStr); err == nil {
			base = newBase
		}
	}

	return &Extraction{
		Title:    extractTitle(doc),
		Outlinks: extractAndResolve(doc, base, nil),
	}, nil
}

func findBase(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "base" {
		if href, ok := attr(n, "href"); ok {
			return strings.TrimSpace(href)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if res := findBase(c); res != "" {
			return res
		}
	}
	return ""
}

func extractAndResolve(n *html.Node, base *url.URL, links []string) []string {
	if n.Type == html.ElementNode {
		if key, ok := linkAttrs[n.Data]; ok {
			if val, ok := attr(n, key); ok && !isStylesheet(n) {
				if resolved := resolve(strings.TrimSpace(val), base); resolved != "" {
					links = append(links, resolved)
				}
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		links = extractAndResolve(c, base, links)
	}
	return links
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// <link> only counts when it points at another page.
func isStylesheet(n *html.Node) bool {
	if n.Data != "link" {
		return false
	}
	rel, _ := attr(n, "rel")
	for _, r := range strings.Fields(strings.ToLower(rel)) {
		switch r {
		case "canonical", "alternate", "next", "prev":
			return false
		}
	}
	return true
}

func resolve(ref string, base *url.URL) string {
	if ref == "" {
		return ""
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	abs := base.ResolveReference(u)

	scheme := strings.ToLower(abs.Scheme)
	if scheme != "http" && scheme != "https" {
		return ""
	}

	return abs.String()
}

func extractTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		if n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := extractTitle(c); t != "" {
			return t
		}
	}
	return ""
}
