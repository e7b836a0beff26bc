package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// keyPrefix namespaces our entries so Clear never touches foreign keys
// in a shared Redis.
const keyPrefix = "skycalc:"

// Entries outlive the freshness window so a restart can still promote a
// recent value; Tiered enforces the actual expiry.
const redisRetention = 0 // no Redis-side expiry

// RedisStore persists cache entries in Redis.
type RedisStore struct {
	client *redis.Client
}

// OpenRedisStore connects to the Redis behind url ("redis://…").
func OpenRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis cache URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis cache: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, false, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}
	return e, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, e Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}
	if err := s.client.Set(ctx, keyPrefix+key, raw, redisRetention).Err(); err != nil {
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("deleting cache entry %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("clearing cache key %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning cache keys: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error { return s.client.Close() }
