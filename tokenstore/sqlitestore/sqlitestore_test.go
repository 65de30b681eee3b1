// tokenstore/sqlitestore/sqlitestore_test.go
package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetSetClear(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "tokens.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	v, err := s.Get(ctx, "refresh_token")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.Set(ctx, "refresh_token", "R1"))
	require.NoError(t, s.Set(ctx, "refresh_token", "R2"))
	v, err = s.Get(ctx, "refresh_token")
	require.NoError(t, err)
	assert.Equal(t, "R2", v)

	require.NoError(t, s.Clear(ctx, "refresh_token"))
	v, err = s.Get(ctx, "refresh_token")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tokens.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "refresh_token", "R1"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err, "re-applying migrations is a no-op")
	t.Cleanup(func() { _ = s.Close() })

	v, err := s.Get(ctx, "refresh_token")
	require.NoError(t, err)
	assert.Equal(t, "R1", v)
}
