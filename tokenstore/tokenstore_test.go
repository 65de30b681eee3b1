// tokenstore/tokenstore_test.go
package tokenstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/deploymenttheory/go-menu-admin-client/tokenstore"
	"github.com/deploymenttheory/go-menu-admin-client/tokenstore/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	err error
}

func (f failingStore) Get(context.Context, string) (string, error) { return "", f.err }
func (f failingStore) Set(context.Context, string, string) error  { return f.err }
func (f failingStore) Clear(context.Context, string) error         { return f.err }

func TestTokenStore_ScopesAndKeys(t *testing.T) {
	ctx := context.Background()
	session, persistent := memstore.New(), memstore.New()
	tokens := tokenstore.New(session, persistent)

	require.NoError(t, tokens.SetAccess(ctx, "A1"))
	require.NoError(t, tokens.SetRefresh(ctx, "R1"))

	access, err := tokens.Access(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A1", access)
	refresh, err := tokens.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "R1", refresh)

	// Each token lives only in its own scope.
	v, _ := session.Get(ctx, tokenstore.AccessTokenKey)
	assert.Equal(t, "A1", v)
	v, _ = session.Get(ctx, tokenstore.RefreshTokenKey)
	assert.Empty(t, v)
	v, _ = persistent.Get(ctx, tokenstore.RefreshTokenKey)
	assert.Equal(t, "R1", v)
	v, _ = persistent.Get(ctx, tokenstore.AccessTokenKey)
	assert.Empty(t, v)
}

func TestTokenStore_EmptyByDefault(t *testing.T) {
	tokens := tokenstore.New(memstore.New(), memstore.New())

	access, err := tokens.Access(context.Background())
	require.NoError(t, err)
	assert.Empty(t, access)

	refresh, err := tokens.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, refresh)
}

func TestTokenStore_Clear(t *testing.T) {
	ctx := context.Background()
	tokens := tokenstore.New(memstore.New(), memstore.New())
	require.NoError(t, tokens.SetAccess(ctx, "A1"))
	require.NoError(t, tokens.SetRefresh(ctx, "R1"))

	require.NoError(t, tokens.Clear(ctx))

	access, _ := tokens.Access(ctx)
	refresh, _ := tokens.Refresh(ctx)
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestTokenStore_ClearAttemptsBothScopes(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("session storage unavailable")
	persistent := memstore.New()
	require.NoError(t, persistent.Set(ctx, tokenstore.RefreshTokenKey, "R1"))

	err := tokenstore.New(failingStore{err: boom}, persistent).Clear(ctx)

	require.ErrorIs(t, err, boom)
	v, _ := persistent.Get(ctx, tokenstore.RefreshTokenKey)
	assert.Empty(t, v, "persistent scope is cleared even when the session scope fails")
}

func TestTokenStore_PropagatesStorageErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	tokens := tokenstore.New(failingStore{err: boom}, failingStore{err: boom})

	_, err := tokens.Access(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, tokens.SetRefresh(ctx, "R"), boom)
}
