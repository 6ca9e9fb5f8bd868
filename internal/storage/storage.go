package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates a key does not exist.
var ErrNotFound = errors.New("key not found")

//go:generate mockgen -source=storage.go -destination=mock/kv.go -package=mock

// KV is durable local storage: string values under fixed string keys.
// Implementations must be safe for concurrent use.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
