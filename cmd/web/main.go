package main

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/pflag"

	"github.com/devraulu/urlnorm/pkg/config"
	"github.com/devraulu/urlnorm/pkg/logger"
	"github.com/devraulu/urlnorm/pkg/storage"
)

type webFlags struct {
	configPath string
	addr       string
}

func parseFlags(args []string) (*webFlags, error) {
	f := &webFlags{}
	set := pflag.NewFlagSet("web", pflag.ContinueOnError)
	set.StringVarP(&f.configPath, "config", "c", "config.toml", "path to the TOML configuration file")
	set.StringVar(&f.addr, "addr", "", "listen address, overrides web.addr")
	if err := set.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

func main() {
	flags, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load(flags.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		slog.Error("fatal: couldn't load config", slog.Any("err", err))
		os.Exit(1)
	}
	if flags.addr != "" {
		cfg.Web.Addr = flags.addr
	}

	logger.InitLogger(cfg)

	opts, err := cfg.NormalizeOptions()
	if err != nil {
		slog.Error("fatal: invalid normalize options", slog.Any("err", err))
		os.Exit(1)
	}
	slog.Info("normalize options", "options", opts)

	var store storage.Storage
	if cfg.DSN != "" {
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			slog.Error("fatal: couldn't open database", slog.Any("err", err))
			os.Exit(1)
		}
		defer db.Close()

		if err := storage.RunMigrations(db); err != nil {
			slog.Error("fatal: failed to run migrations", "err", err)
			os.Exit(1)
		}
		store = storage.NewPostgresStorage(db)
	} else {
		slog.Warn("no dsn configured, /lookup and /hosts are disabled")
	}

	srv := &http.Server{
		Addr:              cfg.Web.Addr,
		Handler:           newServer(opts, store),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", slog.Any("err", err))
		}
	}()

	slog.Info("starting web server", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("fatal: web server failed", slog.Any("err", err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}
