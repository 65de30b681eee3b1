// tokenstore/tokenstore.go
/* Package tokenstore holds the session credentials used to authorize admin API requests.

The access token lives in a session-scoped store that is expected to disappear with the
session. The refresh token lives in a persistent store that survives restarts. Both stores
are injected so callers decide where each scope actually lives. */
package tokenstore

import (
	"context"
	"errors"
	"fmt"
)

// Storage keys for the two credentials.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// Store is a string key/value port. Get returns "" and no error for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context, key string) error
}

// SessionScopedStore holds values that must not outlive the current session.
type SessionScopedStore interface {
	Store
}

// PersistentStore holds values that survive process restarts.
type PersistentStore interface {
	Store
}

// TokenStore is the single source of truth for the access and refresh tokens.
// Token values are never inspected or validated.
type TokenStore struct {
	session    SessionScopedStore
	persistent PersistentStore
}

// New returns a TokenStore over the two scopes.
func New(session SessionScopedStore, persistent PersistentStore) *TokenStore {
	return &TokenStore{session: session, persistent: persistent}
}

// Access returns the current access token, or "" when none is stored.
func (t *TokenStore) Access(ctx context.Context) (string, error) {
	return t.session.Get(ctx, AccessTokenKey)
}

// SetAccess overwrites the access token.
func (t *TokenStore) SetAccess(ctx context.Context, token string) error {
	return t.session.Set(ctx, AccessTokenKey, token)
}

// Refresh returns the current refresh token, or "" when none is stored.
func (t *TokenStore) Refresh(ctx context.Context) (string, error) {
	return t.persistent.Get(ctx, RefreshTokenKey)
}

// SetRefresh overwrites the refresh token.
func (t *TokenStore) SetRefresh(ctx context.Context, token string) error {
	return t.persistent.Set(ctx, RefreshTokenKey, token)
}

// Clear removes both tokens. Both removals are attempted even if the first fails.
func (t *TokenStore) Clear(ctx context.Context) error {
	var errs []error
	if err := t.session.Clear(ctx, AccessTokenKey); err != nil {
		errs = append(errs, fmt.Errorf("clear access token: %w", err))
	}
	if err := t.persistent.Clear(ctx, RefreshTokenKey); err != nil {
		errs = append(errs, fmt.Errorf("clear refresh token: %w", err))
	}
	return errors.Join(errs...)
}
