package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Entry is one cached payload with its write timestamp. Both tiers hold
// this same shape, addressed by the same key.
type Entry struct {
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Store is the persistent cache tier. Implementations must tolerate
// concurrent use; callers treat every operation as fallible and never
// fail a session over a store error.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// NoopStore is a Store that persists nothing. Used for memory-only
// deployments and tests.
type NoopStore struct{}

func (NoopStore) Get(context.Context, string) (Entry, bool, error) { return Entry{}, false, nil }
func (NoopStore) Set(context.Context, string, Entry) error         { return nil }
func (NoopStore) Delete(context.Context, string) error             { return nil }
func (NoopStore) Clear(context.Context) error                      { return nil }

// Open builds a Store from a cache URL: "sqlite:<path>" or
// "postgres://…" for the SQL store, "redis://…" for Redis, empty for
// no persistence.
func Open(ctx context.Context, url string) (Store, error) {
	switch {
	case url == "":
		return NoopStore{}, nil
	case strings.HasPrefix(url, "sqlite:"), strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return OpenSQLStore(ctx, url)
	case strings.HasPrefix(url, "redis://"), strings.HasPrefix(url, "rediss://"):
		return OpenRedisStore(ctx, url)
	default:
		return nil, fmt.Errorf("unsupported cache URL %q", url)
	}
}
