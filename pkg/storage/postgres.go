package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
)

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

func (s *PostgresStorage) SaveLink(ctx context.Context, l Link) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO links (normalized_url, raw_url, referrer, host, robots_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (normalized_url) DO NOTHING
		RETURNING id`,
		l.NormalizedURL, l.RawURL, l.Referrer, l.Host, l.RobotsURL,
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		slog.Debug("link already stored", slog.String("url", l.NormalizedURL))
		return false, nil
	}
	if err != nil {
		return false, err
	}

	slog.Debug("saved link", slog.Int64("id", id), slog.String("url", l.NormalizedURL))
	return true, nil
}

func (s *PostgresStorage) Lookup(ctx context.Context, normalizedURL string) (Link, error) {
	var l Link
	err := s.db.QueryRowContext(ctx, `
		SELECT normalized_url, raw_url, referrer, host, robots_url, first_seen
		FROM links
		WHERE normalized_url = $1`,
		normalizedURL,
	).Scan(&l.NormalizedURL, &l.RawURL, &l.Referrer, &l.Host, &l.RobotsURL, &l.FirstSeen)

	if errors.Is(err, sql.ErrNoRows) {
		return Link{}, ErrNotFound
	}
	if err != nil {
		slog.Error("lookup failed", slog.String("url", normalizedURL), slog.Any("err", err))
		return Link{}, err
	}
	return l, nil
}

func (s *PostgresStorage) HostCounts(ctx context.Context, limit int) ([]HostCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT host, COUNT(*) AS n
		FROM links
		GROUP BY host
		ORDER BY n DESC, host
		LIMIT $1`,
		limit,
	)
	if err != nil {
		slog.Error("host count query failed", slog.Any("err", err))
		return nil, err
	}
	defer rows.Close()

	var counts []HostCount
	for rows.Next() {
		var c HostCount
		if err := rows.Scan(&c.Host, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		slog.Error("host count rows iteration failed", slog.Any("err", err))
		return nil, err
	}
	return counts, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
