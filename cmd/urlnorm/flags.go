package main

import (
	"github.com/spf13/pflag"

	"github.com/devraulu/urlnorm/pkg/config"
	"github.com/devraulu/urlnorm/pkg/normalize"
)

type boolFlag struct {
	name  string
	usage string
	field func(*config.NormalizeConfig) *bool
}

var boolFlags = []boolFlag{
	{"normalize-protocol", "Prepend the default protocol to //host URLs", func(n *config.NormalizeConfig) *bool { return &n.NormalizeProtocol }},
	{"force-http", "Rewrite https: to http:", func(n *config.NormalizeConfig) *bool { return &n.ForceHTTP }},
	{"force-https", "Rewrite http: to https:", func(n *config.NormalizeConfig) *bool { return &n.ForceHTTPS }},
	{"strip-authentication", "Remove user:password@", func(n *config.NormalizeConfig) *bool { return &n.StripAuthentication }},
	{"strip-hash", "Remove the fragment", func(n *config.NormalizeConfig) *bool { return &n.StripHash }},
	{"strip-text-fragment", "Remove #:~:text= directives", func(n *config.NormalizeConfig) *bool { return &n.StripTextFragment }},
	{"strip-www", "Remove a leading www.", func(n *config.NormalizeConfig) *bool { return &n.StripWWW }},
	{"remove-trailing-slash", "Remove a trailing / from the path", func(n *config.NormalizeConfig) *bool { return &n.RemoveTrailingSlash }},
	{"remove-single-slash", "Remove a lone / path", func(n *config.NormalizeConfig) *bool { return &n.RemoveSingleSlash }},
	{"remove-explicit-port", "Remove any port", func(n *config.NormalizeConfig) *bool { return &n.RemoveExplicitPort }},
	{"sort-query-parameters", "Sort query parameters by key", func(n *config.NormalizeConfig) *bool { return &n.SortQueryParameters }},
	{"remove-path", "Remove the whole path", func(n *config.NormalizeConfig) *bool { return &n.RemovePath }},
	{"strip-protocol", "Remove http://, https:// or // from the result", func(n *config.NormalizeConfig) *bool { return &n.StripProtocol }},
}

// registerNormalizeFlags adds one flag per normalize option. Flags only
// override the configuration when set on the command line.
func registerNormalizeFlags(fs *pflag.FlagSet) {
	defaults := normalize.DefaultOptions()
	d := config.Default().Normalize

	for _, f := range boolFlags {
		fs.Bool(f.name, *f.field(&d), f.usage)
	}

	fs.String("default-protocol", defaults.DefaultProtocol, "Protocol prepended to URLs without one")
	fs.String("empty-query-value", string(defaults.EmptyQueryValue), "Empty query values: preserve, always or never")
	fs.StringArray("remove-query-parameters", nil, "Query keys to remove; /re/flags for a pattern")
	fs.Bool("remove-all-query-parameters", false, "Remove the whole query")
	fs.StringArray("keep-query-parameters", nil, "Only keep these query keys; /re/flags for a pattern")
	fs.Bool("remove-directory-index", false, "Remove index.* final path segments")
	fs.StringArray("directory-index", nil, "Final path segments to remove; /re/flags for a pattern")
	fs.StringArray("custom-protocols", nil, "Extra protocols to normalize")
}

func applyNormalizeFlags(fs *pflag.FlagSet, n *config.NormalizeConfig) error {
	for _, f := range boolFlags {
		if !fs.Changed(f.name) {
			continue
		}
		v, err := fs.GetBool(f.name)
		if err != nil {
			return err
		}
		*f.field(n) = v
	}

	if fs.Changed("default-protocol") {
		v, err := fs.GetString("default-protocol")
		if err != nil {
			return err
		}
		n.DefaultProtocol = v
	}

	if fs.Changed("empty-query-value") {
		v, err := fs.GetString("empty-query-value")
		if err != nil {
			return err
		}
		n.EmptyQueryValue = v
	}

	if fs.Changed("remove-query-parameters") {
		v, err := fs.GetStringArray("remove-query-parameters")
		if err != nil {
			return err
		}
		n.RemoveQueryParams = toAny(v)
	}

	if fs.Changed("remove-all-query-parameters") {
		v, err := fs.GetBool("remove-all-query-parameters")
		if err != nil {
			return err
		}
		n.RemoveQueryParams = v
	}

	if fs.Changed("keep-query-parameters") {
		v, err := fs.GetStringArray("keep-query-parameters")
		if err != nil {
			return err
		}
		n.KeepQueryParams = &v
	}

	if fs.Changed("remove-directory-index") {
		v, err := fs.GetBool("remove-directory-index")
		if err != nil {
			return err
		}
		n.RemoveDirectoryIdx = v
	}

	if fs.Changed("directory-index") {
		v, err := fs.GetStringArray("directory-index")
		if err != nil {
			return err
		}
		n.RemoveDirectoryIdx = toAny(v)
	}

	if fs.Changed("custom-protocols") {
		v, err := fs.GetStringArray("custom-protocols")
		if err != nil {
			return err
		}
		n.CustomProtocols = v
	}

	return nil
}

// toAny matches the shape go-toml produces for a list of strings.
func toAny(v []string) []any {
	out := make([]any, len(v))
	for i, s := range v {
		out[i] = s
	}
	return out
}
