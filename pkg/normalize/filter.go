package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

// Filter matches a query key or path segment, either exactly or with a
// regular expression.
type Filter struct {
	literal string
	pattern *regexp.Regexp
}

// Literal matches names equal to s.
func Literal(s string) Filter {
	return Filter{literal: s}
}

// Pattern matches names containing a match of re.
func Pattern(re *regexp.Regexp) Filter {
	return Filter{pattern: re}
}

// MustPattern is like Pattern but compiles expr, panicking on error.
func MustPattern(expr string) Filter {
	return Pattern(regexp.MustCompile(expr))
}

func (f Filter) Match(name string) bool {
	if f.pattern != nil {
		return f.pattern.MatchString(name)
	}
	return f.literal == name
}

func (f Filter) String() string {
	if f.pattern != nil {
		return "/" + f.pattern.String() + "/"
	}
	return f.literal
}

// Filters matches when any of its filters does. An empty set never
// matches.
type Filters []Filter

func (fs Filters) Match(name string) bool {
	for _, f := range fs {
		if f.Match(name) {
			return true
		}
	}
	return false
}

func (fs Filters) String() string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.String()
	}
	return strings.Join(names, ",")
}

// DirectoryIndexFilters matches index.html, index.php and friends.
func DirectoryIndexFilters() Filters {
	return Filters{MustPattern(`^index\.[a-z]+$`)}
}

// DefaultRemoveQueryParameters matches utm_* tracking parameters.
func DefaultRemoveQueryParameters() Filters {
	return Filters{MustPattern(`(?i)^utm_\w+`)}
}

// ParseFilter reads a filter from text. "/source/flags" is a regular
// expression; anything else is a literal. The i, m and s flags are
// honored; g and y carry no meaning for a stateless match and are ignored.
func ParseFilter(s string) (Filter, error) {
	end := strings.LastIndexByte(s, '/')
	if !strings.HasPrefix(s, "/") || end < 1 {
		return Literal(s), nil
	}

	source, flags := s[1:end], s[end+1:]
	var prefix string
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			if !strings.ContainsRune(prefix, f) {
				prefix += string(f)
			}
		case 'g', 'y', 'u', 'd':
		default:
			return Literal(s), nil
		}
	}
	if prefix != "" {
		source = "(?" + prefix + ")" + source
	}

	re, err := regexp.Compile(source)
	if err != nil {
		return Filter{}, fmt.Errorf("invalid filter %q: %w", s, err)
	}
	return Pattern(re), nil
}

// ParseFilters parses each entry with ParseFilter.
func ParseFilters(entries []string) (Filters, error) {
	fs := make(Filters, 0, len(entries))
	for _, e := range entries {
		f, err := ParseFilter(e)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	return fs, nil
}
