package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeStore is an in-memory Store recording operations.
type fakeStore struct {
	mu      sync.Mutex
	entries map[string]Entry
	setErr  error
	gets    int
	sets    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[string]Entry{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (Entry, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	e, ok := f.entries[key]
	return e, ok, nil
}

func (f *fakeStore) Set(_ context.Context, key string, e Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[key] = e
	return nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

func (f *fakeStore) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = map[string]Entry{}
	return nil
}

func TestWriteThroughBothTiers(t *testing.T) {
	store := newFakeStore()
	c := NewTiered(store, time.Minute)
	ctx := context.Background()

	c.Set(ctx, "k", json.RawMessage(`{"amount":42}`))

	stored, ok := store.entries["k"]
	if !ok {
		t.Fatal("persistent tier not written")
	}

	got, ok := c.Get(ctx, "k")
	if !ok {
		t.Fatal("expected memory hit")
	}
	if string(got.Value) != string(stored.Value) {
		t.Errorf("tiers disagree: memory %s, store %s", got.Value, stored.Value)
	}
	if !got.UpdatedAt.Equal(stored.UpdatedAt) {
		t.Error("tiers carry different timestamps for the same write")
	}
}

func TestPersistentHitPromotedToMemory(t *testing.T) {
	store := newFakeStore()
	store.entries["k"] = Entry{Value: json.RawMessage(`"v1"`), UpdatedAt: time.Now()}
	c := NewTiered(store, time.Minute)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "k"); !ok {
		t.Fatal("expected persistent hit")
	}
	storeGets := store.gets

	// Mutate the store behind the cache; a promoted entry is served from
	// memory without another store read.
	store.entries["k"] = Entry{Value: json.RawMessage(`"v2"`), UpdatedAt: time.Now()}

	got, ok := c.Get(ctx, "k")
	if !ok {
		t.Fatal("expected memory hit after promotion")
	}
	if string(got.Value) != `"v1"` {
		t.Errorf("got %s, want promoted value v1", got.Value)
	}
	if store.gets != storeGets {
		t.Errorf("store read %d times after promotion, want 0 extra", store.gets-storeGets)
	}
}

func TestExpiredEntriesMiss(t *testing.T) {
	store := newFakeStore()
	store.entries["k"] = Entry{Value: json.RawMessage(`"old"`), UpdatedAt: time.Now().Add(-2 * time.Minute)}
	c := NewTiered(store, time.Minute)

	if _, ok := c.Get(context.Background(), "k"); ok {
		t.Error("expected miss for entry older than the expiry window")
	}
}

func TestStoreWriteFailureKeepsMemoryAuthoritative(t *testing.T) {
	store := newFakeStore()
	store.setErr = errors.New("disk full")
	c := NewTiered(store, time.Minute)
	ctx := context.Background()

	c.Set(ctx, "k", json.RawMessage(`"v"`))

	got, ok := c.Get(ctx, "k")
	if !ok {
		t.Fatal("memory tier must serve the value despite a store write failure")
	}
	if string(got.Value) != `"v"` {
		t.Errorf("got %s, want v", got.Value)
	}
}

func TestClearPurgesBothTiers(t *testing.T) {
	store := newFakeStore()
	c := NewTiered(store, time.Minute)
	ctx := context.Background()

	c.Set(ctx, "k", json.RawMessage(`"v"`))
	c.Clear(ctx)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expected miss after Clear")
	}
	if len(store.entries) != 0 {
		t.Error("persistent tier not cleared")
	}
}

func TestGetJSONRoundTrip(t *testing.T) {
	c := NewTiered(newFakeStore(), time.Minute)
	ctx := context.Background()

	type payload struct {
		Amount float64 `json:"amount"`
		Status string  `json:"status"`
	}
	c.SetJSON(ctx, "k", payload{Amount: 12.5, Status: "ok"})

	var got payload
	if !c.GetJSON(ctx, "k", &got) {
		t.Fatal("expected hit")
	}
	if got.Amount != 12.5 || got.Status != "ok" {
		t.Errorf("got %+v", got)
	}
}
