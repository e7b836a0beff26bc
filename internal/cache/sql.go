package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type sqlDialect string

const (
	dialectSQLite   sqlDialect = "sqlite"
	dialectPostgres sqlDialect = "postgres"
)

// SQLStore persists cache entries in SQLite or PostgreSQL through
// database/sql; the dialect is chosen from the cache URL.
type SQLStore struct {
	dialect sqlDialect
	db      *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS price_cache (
	cache_key  TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// OpenSQLStore opens (and if needed initializes) the cache table behind
// url: "sqlite:<path>" or a postgres connection string.
func OpenSQLStore(ctx context.Context, url string) (*SQLStore, error) {
	var (
		dialect    sqlDialect
		driverName string
		dsn        string
	)
	switch {
	case strings.HasPrefix(url, "sqlite:"):
		dialect, driverName = dialectSQLite, "sqlite"
		dsn = strings.TrimPrefix(url, "sqlite:")
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("creating cache directory: %w", err)
			}
		}
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		dialect, driverName = dialectPostgres, "pgx"
		dsn = url
	default:
		return nil, fmt.Errorf("unsupported SQL cache URL %q", url)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}

	return &SQLStore{dialect: dialect, db: db}, nil
}

// rebind converts $N placeholders to ? for the sqlite driver.
func (s *SQLStore) rebind(query string) string {
	if s.dialect == dialectPostgres {
		return query
	}
	for i := 3; i >= 1; i-- {
		query = strings.ReplaceAll(query, fmt.Sprintf("$%d", i), "?")
	}
	return query
}

func (s *SQLStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	var (
		payload   string
		updatedAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT payload, updated_at FROM price_cache WHERE cache_key = $1`),
		key).Scan(&payload, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}
	return Entry{Value: []byte(payload), UpdatedAt: updatedAt}, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO price_cache (cache_key, payload, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (cache_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`),
		key, string(e.Value), e.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM price_cache WHERE cache_key = $1`), key); err != nil {
		return fmt.Errorf("deleting cache entry %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM price_cache`); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error { return s.db.Close() }
