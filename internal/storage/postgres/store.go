package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/storefront/internal/storage"
)

// Ensure Store satisfies the storage.KV interface at compile time.
var _ storage.KV = (*Store)(nil)

// Store provides Postgres-backed local storage, one row per key and namespace.
// The namespace lets several client installations share one database.
type Store struct {
	pool      *pgxpool.Pool
	namespace string
}

// New creates a new Store and runs migrations.
func New(ctx context.Context, databaseURL, namespace string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool, namespace: namespace}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS local_storage (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (namespace, key)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// Get fetches the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM local_storage WHERE namespace = $1 AND key = $2;`
	var value string
	if err := s.pool.QueryRow(ctx, query, s.namespace, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set upserts key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	const query = `
	INSERT INTO local_storage (namespace, key, value)
	VALUES ($1, $2, $3)
	ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW();
	`
	if _, err := s.pool.Exec(ctx, query, s.namespace, key, value); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

// Delete removes key; deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM local_storage WHERE namespace = $1 AND key = $2;`
	if _, err := s.pool.Exec(ctx, query, s.namespace, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
