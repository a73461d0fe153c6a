package normalize

import "log/slog"

// EmptyQueryValue controls how query keys without a value are written.
type EmptyQueryValue string

const (
	// EmptyValuePreserve writes "key" or "key=" the way the input did.
	EmptyValuePreserve EmptyQueryValue = "preserve"
	// EmptyValueAlways writes "key=".
	EmptyValueAlways EmptyQueryValue = "always"
	// EmptyValueNever writes "key".
	EmptyValueNever EmptyQueryValue = "never"
)

// Options configures Normalize. Start from DefaultOptions and override
// fields; a nil *Options means the defaults.
type Options struct {
	// DefaultProtocol is prepended to URLs without one. A missing trailing
	// ':' is added.
	DefaultProtocol string
	// NormalizeProtocol turns protocol-relative "//host" URLs into
	// absolute ones.
	NormalizeProtocol bool
	ForceHTTP         bool
	ForceHTTPS        bool

	StripAuthentication bool
	StripHash           bool
	// StripTextFragment removes "#:~:text=..." directives. Ignored when
	// StripHash is set.
	StripTextFragment bool
	StripWWW          bool

	// RemoveQueryParameters drops matching keys. Ignored when
	// KeepQueryParameters is non-nil.
	RemoveQueryParameters Filters
	// RemoveAllQueryParameters drops the whole query. Ignored when
	// KeepQueryParameters is non-nil.
	RemoveAllQueryParameters bool
	// KeepQueryParameters drops every key that does not match. A non-nil
	// empty slice keeps nothing.
	KeepQueryParameters Filters

	RemoveTrailingSlash bool
	// RemoveSingleSlash drops the "/" of a bare root path.
	RemoveSingleSlash bool
	// RemoveDirectoryIndex drops a final path segment that matches, e.g.
	// DirectoryIndexFilters.
	RemoveDirectoryIndex Filters
	RemoveExplicitPort   bool
	SortQueryParameters  bool
	RemovePath           bool
	// TransformPath receives the non-empty path segments and returns the
	// new ones. It runs after RemovePath.
	TransformPath func(segments []string) []string

	EmptyQueryValue EmptyQueryValue
	// CustomProtocols lists non-http schemes (e.g. "sindre") that are
	// normalized instead of returned untouched.
	CustomProtocols []string
	StripProtocol   bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		DefaultProtocol:       "http",
		NormalizeProtocol:     true,
		StripAuthentication:   true,
		StripTextFragment:     true,
		StripWWW:              true,
		RemoveQueryParameters: DefaultRemoveQueryParameters(),
		RemoveTrailingSlash:   true,
		RemoveSingleSlash:     true,
		SortQueryParameters:   true,
		EmptyQueryValue:       EmptyValuePreserve,
	}
}

// LogValue lists the options that change output, so the effective
// configuration can be logged once at startup.
func (o *Options) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("default_protocol", o.DefaultProtocol),
		slog.Bool("strip_www", o.StripWWW),
		slog.Bool("strip_hash", o.StripHash),
		slog.Bool("sort_query_parameters", o.SortQueryParameters),
		slog.String("empty_query_value", string(o.EmptyQueryValue)),
	}
	if o.KeepQueryParameters != nil {
		attrs = append(attrs, slog.String("keep_query_parameters", o.KeepQueryParameters.String()))
	} else {
		attrs = append(attrs, slog.String("remove_query_parameters", o.RemoveQueryParameters.String()))
	}
	if len(o.RemoveDirectoryIndex) > 0 {
		attrs = append(attrs, slog.String("remove_directory_index", o.RemoveDirectoryIndex.String()))
	}
	return slog.GroupValue(attrs...)
}
