// Package cache provides the two-tier price cache: a fast in-memory
// tier and a persistent tier that survives restarts.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Tiered is a write-through two-tier cache. Lookups check memory first,
// then the persistent store (promoting a fresh persistent hit back into
// memory); both tiers hold the same Entry shape under the same key.
//
// Persistent-store failures are logged and swallowed: the memory tier
// stays authoritative for the rest of the session.
type Tiered struct {
	mem   *gocache.Cache
	store Store
	ttl   time.Duration
}

// NewTiered builds a tiered cache over store with the given expiry window.
func NewTiered(store Store, ttl time.Duration) *Tiered {
	return &Tiered{
		mem:   gocache.New(ttl, 2*ttl),
		store: store,
		ttl:   ttl,
	}
}

// Get returns the cached entry for key if either tier holds a value
// younger than the expiry window. A fresh persistent hit is promoted
// into memory so the next lookup skips the store.
func (t *Tiered) Get(ctx context.Context, key string) (Entry, bool) {
	if v, ok := t.mem.Get(key); ok {
		e := v.(Entry)
		if t.fresh(e) {
			return e, true
		}
	}

	e, ok, err := t.store.Get(ctx, key)
	if err != nil {
		slog.Warn("persistent cache read failed", "key", key, "error", err)
		return Entry{}, false
	}
	if !ok || !t.fresh(e) {
		return Entry{}, false
	}

	t.mem.Set(key, e, remaining(e, t.ttl))
	return e, true
}

// Set writes value through both tiers with one shared timestamp.
func (t *Tiered) Set(ctx context.Context, key string, value json.RawMessage) {
	e := Entry{Value: value, UpdatedAt: time.Now()}
	t.mem.Set(key, e, t.ttl)
	if err := t.store.Set(ctx, key, e); err != nil {
		slog.Warn("persistent cache write failed", "key", key, "error", err)
	}
}

// Delete removes key from both tiers.
func (t *Tiered) Delete(ctx context.Context, key string) {
	t.mem.Delete(key)
	if err := t.store.Delete(ctx, key); err != nil {
		slog.Warn("persistent cache delete failed", "key", key, "error", err)
	}
}

// Clear purges both tiers. Used by the manual "refresh prices" action.
func (t *Tiered) Clear(ctx context.Context) {
	t.mem.Flush()
	if err := t.store.Clear(ctx); err != nil {
		slog.Warn("persistent cache clear failed", "error", err)
	}
}

func (t *Tiered) fresh(e Entry) bool {
	return time.Since(e.UpdatedAt) < t.ttl
}

func remaining(e Entry, ttl time.Duration) time.Duration {
	left := ttl - time.Since(e.UpdatedAt)
	if left <= 0 {
		return time.Nanosecond
	}
	return left
}

// GetJSON decodes a cached entry into dest, returning false on miss or
// decode failure.
func (t *Tiered) GetJSON(ctx context.Context, key string, dest any) bool {
	e, ok := t.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(e.Value, dest); err != nil {
		slog.Warn("cached payload undecodable, treating as miss", "key", key, "error", err)
		return false
	}
	return true
}

// SetJSON encodes value and writes it through both tiers. Encoding
// failures are logged and dropped; nothing in the cache is worth
// failing a fetch over.
func (t *Tiered) SetJSON(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		slog.Warn("cache payload not encodable", "key", key, "error", err)
		return
	}
	t.Set(ctx, key, raw)
}
