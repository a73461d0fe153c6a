// Package weburl parses and serializes URLs the way browsers do.
//
// net/url follows RFC 3986 and rejects or rewrites input that browsers
// accept (stray '%' in paths, backslashes, numeric hosts). URL wraps a
// WHATWG URL record and exposes the same getters and setters a browser URL
// object does.
package weburl

import (
	"fmt"
	"strings"

	whatwg "github.com/nlnwa/whatwg-url/url"
)

// URL is a parsed URL. The zero value is not useful; use Parse.
type URL struct {
	u *whatwg.Url
}

// Parse parses an absolute URL.
func Parse(raw string) (*URL, error) {
	u, err := whatwg.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	return &URL{u: u}, nil
}

// Protocol returns the scheme followed by ':'.
func (u *URL) Protocol() string { return u.u.Protocol() }

// SetProtocol changes the scheme. A special scheme cannot be swapped for a
// non special one and vice versa; such changes are ignored.
func (u *URL) SetProtocol(p string) { u.u.SetProtocol(p) }

func (u *URL) Username() string     { return u.u.Username() }
func (u *URL) SetUsername(s string) { u.u.SetUsername(s) }
func (u *URL) Password() string     { return u.u.Password() }
func (u *URL) SetPassword(s string) { u.u.SetPassword(s) }

// Hostname returns the serialized host without port. IPv6 hosts keep
// their brackets.
func (u *URL) Hostname() string { return u.u.Hostname() }

// SetHostname reparses h as the host. Invalid hosts are ignored.
func (u *URL) SetHostname(h string) { u.u.SetHostname(h) }

// Host returns the hostname with the port appended when one is set.
func (u *URL) Host() string { return u.u.Host() }

func (u *URL) Port() string     { return u.u.Port() }
func (u *URL) SetPort(p string) { u.u.SetPort(p) }

func (u *URL) Pathname() string     { return u.u.Pathname() }
func (u *URL) SetPathname(p string) { u.u.SetPathname(p) }

// Search returns the query with its leading '?', or "" when the query is
// null or empty.
func (u *URL) Search() string { return u.u.Search() }

// SetSearch replaces the query. An empty string removes it.
func (u *URL) SetSearch(q string) { u.u.SetSearch(q) }

// Params decodes the query as application/x-www-form-urlencoded.
func (u *URL) Params() []Param {
	return ParseParams(strings.TrimPrefix(u.Search(), "?"))
}

// SetParams replaces the query with the form encoding of params. No params
// removes the query.
func (u *URL) SetParams(params []Param) {
	u.SetSearch(EncodeParams(params))
}

func (u *URL) Hash() string     { return u.u.Hash() }
func (u *URL) SetHash(h string) { u.u.SetHash(h) }

// String serializes the URL, fragment included.
func (u *URL) String() string { return u.u.Href(false) }
