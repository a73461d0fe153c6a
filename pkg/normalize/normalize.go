// Package normalize canonicalizes URLs so that equivalent links compare
// equal as strings.
//
// Normalize runs a fixed pipeline over a parsed URL: protocol defaulting,
// credential and fragment stripping, path cleanup, host cleanup, query
// canonicalization and serialization. Every lossy step can be turned off
// through Options.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/devraulu/urlnorm/pkg/weburl"
)

// Protocols that are always normalized. Anything else that parses as an
// absolute URL is returned untouched unless listed in CustomProtocols.
var supportedProtocols = map[string]bool{
	"https:": true,
	"http:":  true,
	"file:":  true,
}

var (
	explicitAuthority = regexp.MustCompile(`^\w+://`)
	relativePath      = regexp.MustCompile(`^\.*/`)
	wwwHost           = regexp.MustCompile(`^[a-z\-\d]{1,63}\.[a-z.\-\d]{2,63}$`)
)

// Normalize returns the canonical form of raw. A nil opts uses
// DefaultOptions.
//
// Input that is not a URL yields an *InvalidURLError. Setting both
// ForceHTTP and ForceHTTPS yields ErrForceProtocolConflict.
func Normalize(raw string, opts *Options) (string, error) {
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if !strings.HasSuffix(o.DefaultProtocol, ":") {
		o.DefaultProtocol += ":"
	}

	input := trimSpace(raw)

	if len(input) >= 5 && strings.EqualFold(input[:5], "data:") {
		return normalizeDataURL(input, o.StripHash)
	}

	custom := customProtocol(input)
	if custom != "" && !hasCustomProtocol(o.CustomProtocols, custom) {
		return input, nil
	}

	original := input
	relativeProtocol := strings.HasPrefix(input, "//")
	relativeURL := !relativeProtocol && relativePath.MatchString(input)
	if !relativeURL && custom == "" {
		input = prependProtocol(input, o.DefaultProtocol)
	}

	u, err := weburl.Parse(input)
	if err != nil {
		return "", &InvalidURLError{Input: original, Err: err}
	}

	if o.ForceHTTP && o.ForceHTTPS {
		return "", ErrForceProtocolConflict
	}
	if o.ForceHTTP && u.Protocol() == "https:" {
		u.SetProtocol("http:")
	}
	if o.ForceHTTPS && u.Protocol() == "http:" {
		u.SetProtocol("https:")
	}

	if o.StripAuthentication {
		u.SetUsername("")
		u.SetPassword("")
	}

	if o.StripHash {
		u.SetHash("")
	} else if o.StripTextFragment {
		u.SetHash(stripTextFragment(u.Hash()))
	}

	canonicalizePath(u, &o)

	if host := u.Hostname(); host != "" {
		u.SetHostname(strings.TrimSuffix(host, "."))
		if o.StripWWW {
			if bare, ok := stripWWW(u.Hostname()); ok {
				u.SetHostname(bare)
			}
		}
	}

	canonicalizeQuery(u, &o)

	if o.RemoveTrailingSlash {
		u.SetPathname(strings.TrimSuffix(u.Pathname(), "/"))
	}
	if o.RemoveExplicitPort && u.Port() != "" {
		u.SetPort("")
	}

	result := u.String()
	rootPath := u.Pathname() == "/" && u.Hash() == ""
	if !o.RemoveSingleSlash && rootPath && !strings.HasSuffix(input, "/") {
		result = strings.TrimSuffix(result, "/")
	}
	if (o.RemoveTrailingSlash || u.Pathname() == "/") && u.Hash() == "" && o.RemoveSingleSlash {
		result = strings.TrimSuffix(result, "/")
	}

	if relativeProtocol && !o.NormalizeProtocol {
		if rest, ok := strings.CutPrefix(result, "http://"); ok {
			result = "//" + rest
		}
	}

	if o.StripProtocol {
		result = stripProtocol(result)
	}
	return result, nil
}

// trimSpace trims the characters JavaScript's String.prototype.trim does,
// which include U+FEFF.
func trimSpace(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// customProtocol returns the protocol of an absolute URL that is not
// http, https or file. Protocols containing a dot only count when followed
// by "//", so "example.com:8080" is still treated as a host.
func customProtocol(s string) string {
	u, err := weburl.Parse(s)
	if err != nil {
		return ""
	}
	protocol := u.Protocol()
	n := len(protocol) + 2
	hasAuthority := len(s) >= n && strings.EqualFold(s[:n], protocol+"//")
	if (!strings.Contains(protocol, ".") || hasAuthority) && !supportedProtocols[protocol] {
		return protocol
	}
	return ""
}

func hasCustomProtocol(allowed []string, protocol string) bool {
	for _, p := range allowed {
		p = strings.TrimSuffix(strings.ToLower(trimSpace(p)), ":")
		if p != "" && p+":" == protocol {
			return true
		}
	}
	return false
}

// prependProtocol adds protocol to input without a scheme-and-authority
// prefix and replaces a leading "//".
func prependProtocol(input, protocol string) string {
	if rest, ok := strings.CutPrefix(input, "//"); ok {
		return protocol + rest
	}
	if explicitAuthority.MatchString(input) {
		return input
	}
	return protocol + input
}

// stripTextFragment removes a ":~:text" directive, and the '#' right
// before it, through the end of hash.
func stripTextFragment(hash string) string {
	i := strings.Index(asciiLower(hash), ":~:text")
	if i < 0 {
		return hash
	}
	if i > 0 && hash[i-1] == '#' {
		i--
	}
	return hash[:i]
}

// stripWWW removes a single leading "www." when what remains still looks
// like a registrable domain.
func stripWWW(host string) (string, bool) {
	rest, ok := strings.CutPrefix(host, "www.")
	if !ok || strings.HasPrefix(rest, "www.") || !wwwHost.MatchString(rest) {
		return host, false
	}
	return rest, true
}

func stripProtocol(s string) string {
	for _, p := range []string{"https://", "http://", "//"} {
		if rest, ok := strings.CutPrefix(s, p); ok {
			return rest
		}
	}
	return s
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
