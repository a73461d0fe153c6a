package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/devraulu/urlnorm/pkg/config"
)

// InitLogger installs the default logger. Logs go to stderr so that
// command output on stdout stays machine readable.
func InitLogger(cfg *config.Config) {
	slog.SetDefault(New(cfg, os.Stderr))
}

func New(cfg *config.Config, w io.Writer) *slog.Logger {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	useJSON := cfg.Logging.Format != "text"

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Logging.Level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// bunyan levels only make sense for JSON
			if a.Key == slog.LevelKey && useJSON {
				level := a.Value.Any().(slog.Level)
				return slog.Int(a.Key, bunyanLevel(level))
			}
			return a
		},
	}

	if useJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(
		"name", "urlnorm",
		"pid", os.Getpid(),
		"hostname", hostname,
	)
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func bunyanLevel(level slog.Level) int {
	switch {
	case level >= slog.LevelError:
		return 50
	case level >= slog.LevelWarn:
		return 40
	case level >= slog.LevelInfo:
		return 30
	case level >= slog.LevelDebug:
		return 20
	default:
		return 10
	}
}
