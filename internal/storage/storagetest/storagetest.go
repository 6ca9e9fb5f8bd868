// Package storagetest holds the behavior every storage.KV driver must share.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/storefront/internal/storage"
)

// Run exercises kv against the storage.KV contract. Keys are prefixed with
// the test name so runs against shared backends do not collide.
func Run(t *testing.T, kv storage.KV) {
	t.Helper()
	ctx := context.Background()
	key := t.Name() + ":auth_token"

	t.Cleanup(func() { _ = kv.Delete(ctx, key) })

	_, err := kv.Get(ctx, key)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, kv.Set(ctx, key, "T1"))
	got, err := kv.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "T1", got)

	require.NoError(t, kv.Set(ctx, key, `{"id":1,"name":"A"}`))
	got, err = kv.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"name":"A"}`, got)

	require.NoError(t, kv.Delete(ctx, key))
	_, err = kv.Get(ctx, key)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, kv.Delete(ctx, key), "deleting a missing key is a no-op")
}
