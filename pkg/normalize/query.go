package normalize

import (
	"cmp"
	"errors"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/devraulu/urlnorm/pkg/weburl"
)

var errMalformedURI = errors.New("malformed URI sequence")

// Escapes that must survive the decode after sorting: decoding them would
// split or merge parameters.
var structuralEscapes = regexp.MustCompile(`(?i)%(?:26|23|3f|25|2b)`)

// canonicalizeQuery removes, keeps, sorts and re-encodes query parameters
// according to opts.
func canonicalizeQuery(u *weburl.URL, opts *Options) {
	originalSearch := u.Search()

	var sh *shield
	if opts.SortQueryParameters {
		if sh = newShield(originalSearch); sh != nil {
			u.SetSearch(sh.apply(originalSearch))
		}
	}

	keeping := opts.KeepQueryParameters != nil
	if !keeping && len(opts.RemoveQueryParameters) > 0 {
		dropParams(u, func(name string) bool {
			return opts.RemoveQueryParameters.Match(sh.decode(name))
		})
	}
	if !keeping && opts.RemoveAllQueryParameters {
		u.SetSearch("")
	}
	if keeping {
		if len(opts.KeepQueryParameters) > 0 {
			dropParams(u, func(name string) bool {
				return !opts.KeepQueryParameters.Match(sh.decode(name))
			})
		} else {
			u.SetSearch("")
		}
	}

	if opts.SortQueryParameters {
		params := u.Params()
		slices.SortStableFunc(params, func(a, b weburl.Param) int {
			return compareUTF16(sh.decode(a.Name), sh.decode(b.Name))
		})
		u.SetSearch(weburl.EncodeParams(params))
		u.SetSearch(decodeSortedSearch(u.Search()))
		u.SetSearch(sh.restore(u.Search()))
	}

	u.SetSearch(normalizeEmptyValues(u.Search(), opts.EmptyQueryValue, originalSearch))
}

// dropParams removes every pair whose name satisfies drop. The query is
// only re-serialized when something was removed.
func dropParams(u *weburl.URL, drop func(name string) bool) {
	params := u.Params()
	kept := make([]weburl.Param, 0, len(params))
	for _, p := range params {
		if !drop(p.Name) {
			kept = append(kept, p)
		}
	}
	if len(kept) != len(params) {
		u.SetParams(kept)
	}
}

// compareUTF16 orders strings by UTF-16 code units, so astral characters
// sort before U+E000..U+FFFF.
func compareUTF16(a, b string) int {
	for a != "" && b != "" {
		ra, na := utf8.DecodeRuneInString(a)
		rb, nb := utf8.DecodeRuneInString(b)
		if ra != rb {
			return slices.Compare(utf16.Encode([]rune{ra}), utf16.Encode([]rune{rb}))
		}
		a, b = a[na:], b[nb:]
	}
	return cmp.Compare(len(a), len(b))
}

// decodeSortedSearch decodes the form-serialized query back to readable
// text, keeping the escapes that carry structure.
func decodeSortedSearch(search string) string {
	protected := structuralEscapes.ReplaceAllStringFunc(search, func(m string) string {
		return "%25" + m[1:]
	})
	decoded, err := decodeURIComponent(protected)
	if err != nil {
		return search
	}
	return decoded
}

// decodeURIComponent decodes every escape, failing on malformed escapes
// or invalid UTF-8.
func decodeURIComponent(s string) (string, error) {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return "", err
	}
	if !utf8.ValidString(decoded) {
		return "", errMalformedURI
	}
	return decoded, nil
}

// decodeQueryKey decodes a raw key for comparison. It never fails.
func decodeQueryKey(raw string) string {
	if decoded, err := url.QueryUnescape(raw); err == nil && utf8.ValidString(decoded) {
		return decoded
	}
	return weburl.DecodeFormComponent(raw)
}

// bareKeys returns the decoded keys written without '=' in search.
func bareKeys(search string) map[string]struct{} {
	keys := make(map[string]struct{})
	if search == "" {
		return keys
	}
	for _, part := range strings.Split(search[1:], "&") {
		if part != "" && !strings.Contains(part, "=") {
			keys[decodeQueryKey(part)] = struct{}{}
		}
	}
	return keys
}

// normalizeEmptyValues rewrites keys without a value per mode. In keys a
// '+' becomes %20; values are left as they are.
func normalizeEmptyValues(search string, mode EmptyQueryValue, originalSearch string) string {
	var bare map[string]struct{}
	if mode != EmptyValueAlways && mode != EmptyValueNever {
		bare = bareKeys(originalSearch)
	}

	format := func(key string) string {
		switch mode {
		case EmptyValueAlways:
			return key + "="
		case EmptyValueNever:
			return key
		}
		if _, ok := bare[decodeQueryKey(key)]; ok {
			return key
		}
		return key + "="
	}

	var parts []string
	for _, part := range strings.Split(strings.TrimPrefix(search, "?"), "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		key = strings.ReplaceAll(key, "+", "%20")
		switch {
		case part == "=":
			parts = append(parts, "=")
		case value == "":
			parts = append(parts, format(key))
		default:
			parts = append(parts, key+"="+value)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}
