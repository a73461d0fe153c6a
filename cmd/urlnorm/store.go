package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/devraulu/urlnorm/pkg/linkset"
	"github.com/devraulu/urlnorm/pkg/storage"
)

var errNoDSN = errors.New("no dsn configured")

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errNoDSN
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("couldn't open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("couldn't reach database: %w", err)
	}
	return db, nil
}

func openStore(ctx context.Context, dsn string) (*storage.PostgresStorage, error) {
	db, err := openDB(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if err := storage.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return storage.NewPostgresStorage(db), nil
}

// saveLinks persists links and reports how many were new.
func saveLinks(ctx context.Context, store storage.Storage, links []linkset.Link) (int, error) {
	inserted := 0
	for _, l := range links {
		ok, err := store.SaveLink(ctx, storage.Link{
			NormalizedURL: l.Normalized,
			RawURL:        l.Original,
			Referrer:      l.Referrer,
			Host:          l.Host,
			RobotsURL:     l.RobotsURL,
		})
		if err != nil {
			return inserted, fmt.Errorf("failed to save %s: %w", l.Normalized, err)
		}
		if ok {
			inserted++
		}
	}

	slog.Info("links stored", slog.Int("inserted", inserted), slog.Int("known", len(links)-inserted))
	return inserted, nil
}
