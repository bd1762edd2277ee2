package repository

import (
	"context"
	"time"
)

// SceneStore persists imagery catalog lookups with an expiry. Only provider
// scene metadata lives here; analysis results are never stored.
type SceneStore interface {
	// Get returns the payload for key, or ok=false when the key is absent
	// or expired.
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)
	// Put inserts or replaces the payload for key.
	Put(ctx context.Context, key string, payload []byte, expiresAt time.Time) error
	// PurgeExpired deletes rows whose expiry is at or before now and
	// returns the number removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
	Close() error
}
