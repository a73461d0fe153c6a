package normalize

import (
	"strings"
	"unicode/utf8"

	"github.com/devraulu/urlnorm/pkg/weburl"
)

// Longest scheme kept intact inside a path, not counting its first letter.
const maxEmbeddedSchemeLen = 50

// collapseSlashes replaces runs of '/' with a single one, except directly
// after an embedded scheme such as "https://" in "/redirect/https://x".
//
// The scan alternates between plain spans, where runs are collapsed, and
// embedded schemes, which are copied verbatim.
func collapseSlashes(pathname string) string {
	var b strings.Builder
	b.Grow(len(pathname))

	plain := 0
	for i := 0; i < len(pathname); i++ {
		n := embeddedSchemeLen(pathname, i)
		if n == 0 {
			continue
		}
		writeCollapsed(&b, pathname[plain:i])
		b.WriteString(pathname[i : i+n])
		plain = i + n
		i = plain - 1
	}
	writeCollapsed(&b, pathname[plain:])
	return b.String()
}

func writeCollapsed(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' && i > 0 && s[i-1] == '/' {
			continue
		}
		b.WriteByte(s[i])
	}
}

// embeddedSchemeLen returns the length of "scheme://" starting at i, or 0.
// A scheme starts at a word boundary with a lowercase letter followed by 1
// to 50 of [a-z0-9+.-].
func embeddedSchemeLen(s string, i int) int {
	if !isLowerAlpha(s[i]) || (i > 0 && isWordByte(s[i-1])) {
		return 0
	}
	j := i + 1
	for j < len(s) && j-i-1 < maxEmbeddedSchemeLen && isSchemeByte(s[j]) {
		j++
	}
	if j == i+1 || !strings.HasPrefix(s[j:], "://") {
		return 0
	}
	return j + 3 - i
}

func isLowerAlpha(c byte) bool {
	return 'a' <= c && c <= 'z'
}

func isWordByte(c byte) bool {
	return isLowerAlpha(c) || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') || c == '_'
}

func isSchemeByte(c byte) bool {
	return isLowerAlpha(c) || ('0' <= c && c <= '9') || c == '+' || c == '-' || c == '.'
}

// Characters decodeURI leaves escaped.
const uriReserved = ";/?:@&=+$,#"

// decodeURI decodes escapes except those of reserved characters. Any
// malformed escape or invalid UTF-8 sequence is an error.
func decodeURI(s string) (string, error) {
	if strings.IndexByte(s, '%') < 0 {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '%' {
			b.WriteByte(s[i])
			i++
			continue
		}

		c, ok := escapedByte(s, i)
		if !ok {
			return "", errMalformedURI
		}
		if c < utf8.RuneSelf {
			if strings.IndexByte(uriReserved, c) >= 0 {
				b.WriteString(s[i : i+3])
			} else {
				b.WriteByte(c)
			}
			i += 3
			continue
		}

		n := utf8SequenceLen(c)
		if n == 0 {
			return "", errMalformedURI
		}
		seq := []byte{c}
		i += 3
		for k := 1; k < n; k++ {
			d, ok := escapedByte(s, i)
			if !ok || d&0xc0 != 0x80 {
				return "", errMalformedURI
			}
			seq = append(seq, d)
			i += 3
		}
		if !utf8.Valid(seq) {
			return "", errMalformedURI
		}
		b.Write(seq)
	}
	return b.String(), nil
}

// escapedByte decodes the %XX escape at s[i].
func escapedByte(s string, i int) (byte, bool) {
	if i+2 >= len(s) || s[i] != '%' {
		return 0, false
	}
	hi, ok1 := unhexByte(s[i+1])
	lo, ok2 := unhexByte(s[i+2])
	return hi<<4 | lo, ok1 && ok2
}

func unhexByte(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func utf8SequenceLen(lead byte) int {
	switch {
	case lead&0xe0 == 0xc0:
		return 2
	case lead&0xf0 == 0xe0:
		return 3
	case lead&0xf8 == 0xf0:
		return 4
	}
	return 0
}

// pathSegments returns the non-empty segments of a pathname.
func pathSegments(pathname string) []string {
	var segments []string
	for _, seg := range strings.Split(pathname, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// canonicalizePath runs the path steps of the pipeline in order.
func canonicalizePath(u *weburl.URL, opts *Options) {
	if p := u.Pathname(); p != "" {
		u.SetPathname(collapseSlashes(p))
	}

	if p := u.Pathname(); p != "" {
		if decoded, err := decodeURI(p); err == nil {
			u.SetPathname(strings.ReplaceAll(decoded, `\`, "%5C"))
		}
	}

	if len(opts.RemoveDirectoryIndex) > 0 {
		segments := pathSegments(u.Pathname())
		if n := len(segments); n > 0 && opts.RemoveDirectoryIndex.Match(segments[n-1]) {
			segments = segments[:n-1]
			if len(segments) > 0 {
				u.SetPathname("/" + strings.Join(segments, "/") + "/")
			} else {
				u.SetPathname("/")
			}
		}
	}

	if opts.RemovePath {
		u.SetPathname("/")
	}

	if opts.TransformPath != nil {
		if segments := opts.TransformPath(pathSegments(u.Pathname())); len(segments) > 0 {
			u.SetPathname("/" + strings.Join(segments, "/"))
		} else {
			u.SetPathname("/")
		}
	}
}
