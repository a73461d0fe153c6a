// Package linkset collects URLs and keeps one entry per canonical form.
package linkset

import (
	"log/slog"
	"sync"

	"github.com/devraulu/urlnorm/pkg/normalize"
	"github.com/devraulu/urlnorm/pkg/process"
	"github.com/devraulu/urlnorm/pkg/weburl"
)

// Link is the first occurrence of a canonical URL.
type Link struct {
	Original   string `json:"original" yaml:"original"`
	Normalized string `json:"normalized" yaml:"normalized"`
	Referrer   string `json:"referrer,omitempty" yaml:"referrer,omitempty"`
	Host       string `json:"host,omitempty" yaml:"host,omitempty"`
	RobotsURL  string `json:"robots_url,omitempty" yaml:"robots_url,omitempty"`
}

// Set is safe for concurrent use.
type Set struct {
	opts *normalize.Options

	mu         sync.Mutex
	seen       map[string]int
	links      []Link
	hosts      map[string][]int
	duplicates int
}

// New returns an empty set that canonicalizes with opts (nil means the
// defaults).
func New(opts *normalize.Options) *Set {
	return &Set{
		opts:  opts,
		seen:  make(map[string]int),
		hosts: make(map[string][]int),
	}
}

// Add normalizes raw and records it. The returned bool is false when an
// equivalent URL was already present; the existing Link is returned then.
func (s *Set) Add(raw, referrer string) (Link, bool, error) {
	normalized, err := normalize.Normalize(raw, s.opts)
	if err != nil {
		return Link{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.seen[normalized]; ok {
		s.duplicates++
		slog.Debug("linkset duplicate, skipping", slog.String("url", normalized), slog.String("original_url", raw))
		return s.links[i], false, nil
	}

	link := Link{
		Original:   raw,
		Normalized: normalized,
		Referrer:   referrer,
	}
	link.Host, link.RobotsURL = locate(normalized)

	i := len(s.links)
	s.links = append(s.links, link)
	s.seen[normalized] = i
	s.hosts[link.Host] = append(s.hosts[link.Host], i)

	slog.Debug("linkset add", slog.String("host", link.Host), slog.String("url", normalized), slog.Int("len", len(s.links)))
	return link, true, nil
}

// Len is the number of distinct canonical URLs.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}

// Duplicates counts Add calls that hit an existing entry.
func (s *Set) Duplicates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duplicates
}

// Links returns the entries in insertion order.
func (s *Set) Links() []Link {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Link(nil), s.links...)
}

// Hosts returns the distinct hosts in order of first appearance. Links
// without a host (custom protocols, stripped protocols) are grouped
// under "".
func (s *Set) Hosts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	hosts := make([]string, 0, len(s.hosts))
	seen := make(map[string]bool, len(s.hosts))
	for _, l := range s.links {
		if !seen[l.Host] {
			seen[l.Host] = true
			hosts = append(hosts, l.Host)
		}
	}
	return hosts
}

// ByHost returns the entries for host in insertion order.
func (s *Set) ByHost(host string) []Link {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.hosts[host]
	links := make([]Link, len(idx))
	for j, i := range idx {
		links[j] = s.links[i]
	}
	return links
}

func locate(normalized string) (host, robotsURL string) {
	u, err := weburl.Parse(normalized)
	if err != nil {
		return "", ""
	}

	host = u.Hostname()
	switch u.Protocol() {
	case "http:", "https:":
	default:
		return host, ""
	}

	robotsURL, err = process.RobotsURL(normalized)
	if err != nil {
		slog.Warn("couldn't locate robots.txt", slog.String("url", normalized), slog.Any("err", err))
		return host, ""
	}
	return host, robotsURL
}
