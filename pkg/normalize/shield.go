package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/devraulu/urlnorm/pkg/weburl"
)

const reservedTokenBase = "__normalize_url_encoded_reserved__"

var (
	encodedReservedPattern = regexp.MustCompile(`(?i)%(?:3A|2F|3F|23|5B|5D|40|21|24|26|27|28|29|2A|2B|2C|3B|3D)`)
	reservedTokenIndex     = regexp.MustCompile(reservedTokenBase + `(\d+)__`)
)

// shield swaps encoded reserved characters in a query for opaque tokens so
// that sorting, which decodes the query, cannot change their meaning. A nil
// *shield is a no-op.
type shield struct {
	prefix string
	token  *regexp.Regexp
}

// newShield returns nil when search has no encoded reserved characters.
// The token prefix uses the smallest index not already present in the
// raw or decoded query.
func newShield(search string) *shield {
	if !encodedReservedPattern.MatchString(search) {
		return nil
	}

	decoded, err := decodeURIComponent(search)
	if err != nil {
		decoded = weburl.EncodeParams(weburl.ParseParams(strings.TrimPrefix(search, "?")))
	}

	used := make(map[int]struct{})
	for _, s := range []string{search, decoded} {
		for _, m := range reservedTokenIndex.FindAllStringSubmatch(s, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil {
				used[n] = struct{}{}
			}
		}
	}
	n := 0
	for {
		if _, ok := used[n]; !ok {
			break
		}
		n++
	}

	prefix := reservedTokenBase + strconv.Itoa(n) + "__"
	return &shield{
		prefix: prefix,
		token:  regexp.MustCompile(regexp.QuoteMeta(prefix) + `([0-9A-F]{2})`),
	}
}

func (s *shield) apply(search string) string {
	if s == nil {
		return search
	}
	return encodedReservedPattern.ReplaceAllStringFunc(search, func(m string) string {
		return s.prefix + strings.ToUpper(m[1:])
	})
}

// decode turns tokens back into the characters they stand for, giving the
// name a filter or the sort order should see.
func (s *shield) decode(name string) string {
	if s == nil || !strings.Contains(name, s.prefix) {
		return name
	}
	return s.token.ReplaceAllStringFunc(name, func(m string) string {
		c, _ := strconv.ParseUint(m[len(m)-2:], 16, 8)
		return string(rune(c))
	})
}

// restore turns tokens back into percent escapes.
func (s *shield) restore(search string) string {
	if s == nil {
		return search
	}
	return s.token.ReplaceAllString(search, "%${1}")
}
