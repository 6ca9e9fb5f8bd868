package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/storefront/internal/storage/storagetest"
)

func TestStoreContract(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "nested", "local.json"))
	require.NoError(t, err)
	storagetest.Run(t, s)
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.json")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "auth_token", "T1"))
	require.NoError(t, s.Set(ctx, "user", `{"id":1}`))
	require.NoError(t, s.Delete(ctx, "user"))

	reopened, err := Open(path)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.Equal(t, "T1", got)
	_, err = reopened.Get(ctx, "user")
	assert.Error(t, err)
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Open(path)
	assert.Error(t, err)
}
