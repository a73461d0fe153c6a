package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("link not found")

type Link struct {
	NormalizedURL string    `json:"normalized_url"`
	RawURL        string    `json:"raw_url"`
	Referrer      string    `json:"referrer,omitempty"`
	Host          string    `json:"host,omitempty"`
	RobotsURL     string    `json:"robots_url,omitempty"`
	FirstSeen     time.Time `json:"first_seen"`
}

type HostCount struct {
	Host  string `json:"host"`
	Count int    `json:"count"`
}

type Storage interface {
	// SaveLink stores l unless its normalized URL is already known. The
	// bool reports whether a row was inserted.
	SaveLink(ctx context.Context, l Link) (bool, error)
	Lookup(ctx context.Context, normalizedURL string) (Link, error)
	HostCounts(ctx context.Context, limit int) ([]HostCount, error)
	Close() error
}
