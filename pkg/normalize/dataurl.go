package normalize

import (
	"errors"
	"strings"
)

const (
	dataURLDefaultMIMEType = "text/plain"
	dataURLDefaultCharset  = "us-ascii"
)

var (
	errDataURLNoComma     = errors.New("data URL has no ',' separator")
	errDataURLHashNewline = errors.New("data URL fragment contains a line terminator")
	errDataURLBadPrefix   = errors.New(`data URL must start with "data:"`)
)

const dataURLLineTerminators = "\n\r\u2028\u2029"

// normalizeDataURL canonicalizes data:[<mediatype>][;base64],<data>[#hash].
// Only the media type is rewritten; the payload is kept byte for byte,
// apart from trimming base64 data.
func normalizeDataURL(raw string, stripHash bool) (string, error) {
	rest, ok := strings.CutPrefix(raw, "data:")
	if !ok {
		return "", &InvalidURLError{Input: raw, Err: errDataURLBadPrefix}
	}
	mediaType, rest, ok := strings.Cut(rest, ",")
	if !ok {
		return "", &InvalidURLError{Input: raw, Err: errDataURLNoComma}
	}
	data, hash, _ := strings.Cut(rest, "#")
	if strings.ContainsAny(hash, dataURLLineTerminators) {
		return "", &InvalidURLError{Input: raw, Err: errDataURLHashNewline}
	}

	params := strings.Split(mediaType, ";")
	base64 := params[len(params)-1] == "base64"
	if base64 {
		params = params[:len(params)-1]
	}

	var mimeType string
	if len(params) > 0 {
		mimeType = strings.ToLower(params[0])
		params = params[1:]
	}

	var normalized []string
	for _, attr := range params {
		if a := normalizeDataURLAttribute(attr); a != "" {
			normalized = append(normalized, a)
		}
	}
	if base64 {
		normalized = append(normalized, "base64")
		data = trimSpace(data)
	}
	if len(normalized) > 0 || (mimeType != "" && mimeType != dataURLDefaultMIMEType) {
		normalized = append([]string{mimeType}, normalized...)
	}

	var b strings.Builder
	b.Grow(len(raw))
	b.WriteString("data:")
	b.WriteString(strings.Join(normalized, ";"))
	b.WriteByte(',')
	b.WriteString(data)
	if !stripHash && hash != "" {
		b.WriteByte('#')
		b.WriteString(hash)
	}
	return b.String(), nil
}

// normalizeDataURLAttribute trims key=value, lowercases charset values and
// drops the default charset. Text after a second '=' is discarded.
func normalizeDataURLAttribute(attr string) string {
	fields := strings.Split(attr, "=")
	key := trimSpace(fields[0])
	var value string
	if len(fields) > 1 {
		value = trimSpace(fields[1])
	}

	if key == "charset" {
		value = strings.ToLower(value)
		if value == dataURLDefaultCharset {
			return ""
		}
	}
	if value == "" {
		return key
	}
	return key + "=" + value
}
