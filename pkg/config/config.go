package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/pelletier/go-toml/v2"

	"github.com/devraulu/urlnorm/pkg/normalize"
)

type Config struct {
	DSN       string          `toml:"dsn"`
	Batch     BatchConfig     `toml:"batch"`
	Web       WebConfig       `toml:"web"`
	Logging   LoggingConfig   `toml:"logging"`
	Normalize NormalizeConfig `toml:"normalize"`
}

type BatchConfig struct {
	Workers   int    `toml:"workers"`
	InputFile string `toml:"input_file"`
}

type WebConfig struct {
	Addr string `toml:"addr"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NormalizeConfig mirrors normalize.Options. Filters are strings; a value
// written as /re/flags is compiled as a regular expression.
//
// remove_query_parameters takes true (drop the whole query), false or a
// list of filters. Left unset it keeps the utm_* default.
// remove_directory_index takes true (index.* pages) or a list.
type NormalizeConfig struct {
	DefaultProtocol     string    `toml:"default_protocol"`
	NormalizeProtocol   bool      `toml:"normalize_protocol"`
	ForceHTTP           bool      `toml:"force_http"`
	ForceHTTPS          bool      `toml:"force_https"`
	StripAuthentication bool      `toml:"strip_authentication"`
	StripHash           bool      `toml:"strip_hash"`
	StripTextFragment   bool      `toml:"strip_text_fragment"`
	StripWWW            bool      `toml:"strip_www"`
	RemoveQueryParams   any       `toml:"remove_query_parameters"`
	KeepQueryParams     *[]string `toml:"keep_query_parameters"`
	RemoveTrailingSlash bool      `toml:"remove_trailing_slash"`
	RemoveSingleSlash   bool      `toml:"remove_single_slash"`
	RemoveDirectoryIdx  any       `toml:"remove_directory_index"`
	RemoveExplicitPort  bool      `toml:"remove_explicit_port"`
	SortQueryParameters bool      `toml:"sort_query_parameters"`
	RemovePath          bool      `toml:"remove_path"`
	EmptyQueryValue     string    `toml:"empty_query_value"`
	CustomProtocols     []string  `toml:"custom_protocols"`
	StripProtocol       bool      `toml:"strip_protocol"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	opts := normalize.DefaultOptions()

	var cfg Config
	cfg.Batch.Workers = runtime.NumCPU()
	cfg.Web.Addr = ":8080"
	cfg.Logging.Format = "text"
	cfg.Logging.Level = "info"
	cfg.Normalize = NormalizeConfig{
		DefaultProtocol:     opts.DefaultProtocol,
		NormalizeProtocol:   opts.NormalizeProtocol,
		StripAuthentication: opts.StripAuthentication,
		StripTextFragment:   opts.StripTextFragment,
		StripWWW:            opts.StripWWW,
		RemoveTrailingSlash: opts.RemoveTrailingSlash,
		RemoveSingleSlash:   opts.RemoveSingleSlash,
		SortQueryParameters: opts.SortQueryParameters,
		EmptyQueryValue:     string(opts.EmptyQueryValue),
	}
	return &cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	err = toml.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Batch.Workers < 1 {
		cfg.Batch.Workers = 1
	}

	if _, err := cfg.NormalizeOptions(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// NormalizeOptions builds the options for normalize.Normalize.
func (c *Config) NormalizeOptions() (*normalize.Options, error) {
	n := c.Normalize
	opts := &normalize.Options{
		DefaultProtocol:     n.DefaultProtocol,
		NormalizeProtocol:   n.NormalizeProtocol,
		ForceHTTP:           n.ForceHTTP,
		ForceHTTPS:          n.ForceHTTPS,
		StripAuthentication: n.StripAuthentication,
		StripHash:           n.StripHash,
		StripTextFragment:   n.StripTextFragment,
		StripWWW:            n.StripWWW,
		RemoveTrailingSlash: n.RemoveTrailingSlash,
		RemoveSingleSlash:   n.RemoveSingleSlash,
		RemoveExplicitPort:  n.RemoveExplicitPort,
		SortQueryParameters: n.SortQueryParameters,
		RemovePath:          n.RemovePath,
		CustomProtocols:     n.CustomProtocols,
		StripProtocol:       n.StripProtocol,
	}

	if n.ForceHTTP && n.ForceHTTPS {
		return nil, normalize.ErrForceProtocolConflict
	}

	switch v := normalize.EmptyQueryValue(n.EmptyQueryValue); v {
	case "":
		opts.EmptyQueryValue = normalize.EmptyValuePreserve
	case normalize.EmptyValuePreserve, normalize.EmptyValueAlways, normalize.EmptyValueNever:
		opts.EmptyQueryValue = v
	default:
		return nil, fmt.Errorf("empty_query_value: unknown mode %q", n.EmptyQueryValue)
	}

	switch v := n.RemoveQueryParams.(type) {
	case nil:
		opts.RemoveQueryParameters = normalize.DefaultRemoveQueryParameters()
	case bool:
		opts.RemoveAllQueryParameters = v
	default:
		filters, err := parseFilterList("remove_query_parameters", v)
		if err != nil {
			return nil, err
		}
		opts.RemoveQueryParameters = filters
	}

	if n.KeepQueryParams != nil {
		filters, err := normalize.ParseFilters(*n.KeepQueryParams)
		if err != nil {
			return nil, fmt.Errorf("keep_query_parameters: %w", err)
		}
		opts.KeepQueryParameters = filters
	}

	switch v := n.RemoveDirectoryIdx.(type) {
	case nil:
	case bool:
		if v {
			opts.RemoveDirectoryIndex = normalize.DirectoryIndexFilters()
		}
	default:
		filters, err := parseFilterList("remove_directory_index", v)
		if err != nil {
			return nil, err
		}
		opts.RemoveDirectoryIndex = filters
	}

	return opts, nil
}

func parseFilterList(key string, v any) (normalize.Filters, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected a boolean or a list of strings, got %T", key, v)
	}

	entries := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s: expected strings, got %T", key, item)
		}
		entries = append(entries, s)
	}

	filters, err := normalize.ParseFilters(entries)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return filters, nil
}
