package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/devraulu/urlnorm/pkg/config"
	"github.com/devraulu/urlnorm/pkg/logger"
	"github.com/devraulu/urlnorm/pkg/normalize"
)

const defaultConfigPath = "config.toml"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	output     string
	logLevel   string

	cfg  *config.Config
	opts *normalize.Options
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:          "urlnorm",
		Short:        "Normalize, deduplicate and extract URLs",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", defaultConfigPath, "Path to the TOML configuration file")
	flags.StringVarP(&a.output, "output", "o", "text", "Output format: text, json or yaml")
	flags.StringVar(&a.logLevel, "log-level", "", "Override the configured log level")
	registerNormalizeFlags(flags)

	cmd.AddCommand(
		newNormalizeCommand(a),
		newDedupeCommand(a),
		newExtractCommand(a),
		newMigrateCommand(a),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	switch a.output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}

	cfg, err := loadConfig(a.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	logger.InitLogger(cfg)

	if err := applyNormalizeFlags(cmd.Flags(), &cfg.Normalize); err != nil {
		return err
	}

	opts, err := cfg.NormalizeOptions()
	if err != nil {
		return err
	}
	slog.Debug("normalize options", "options", opts)

	a.cfg = cfg
	a.opts = opts
	return nil
}

// loadConfig falls back to the defaults when the default file is absent.
// An explicitly requested file must exist.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return config.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("couldn't load config: %w", err)
	}
	return cfg, nil
}

// openInput opens path, or the command's stdin for "-".
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(path)
}
