// httpclient/helpers_test.go
package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deploymenttheory/go-menu-admin-client/logger"
	"github.com/deploymenttheory/go-menu-admin-client/tokenstore"
	"github.com/deploymenttheory/go-menu-admin-client/tokenstore/memstore"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeBackend accepts a single valid access token on /admin/* routes and serves /auth/refresh
// through a replaceable handler.
type fakeBackend struct {
	t      *testing.T
	server *httptest.Server

	mu         sync.Mutex
	validToken string
	authSeen   []string
	refreshFn  http.HandlerFunc

	protectedHits atomic.Int32
	refreshHits   atomic.Int32
	refreshBodies chan TokenPair
}

func newFakeBackend(t *testing.T, validToken string) *fakeBackend {
	t.Helper()
	b := &fakeBackend{t: t, validToken: validToken, refreshBodies: make(chan TokenPair, 64)}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.refreshHits.Add(1)
		var body TokenPair
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.refreshBodies <- body
		if r.Header.Get("Authorization") != "" {
			http.Error(w, "refresh must not carry a bearer token", http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		fn := b.refreshFn
		b.mu.Unlock()
		if fn == nil {
			http.Error(w, "no refresh configured", http.StatusInternalServerError)
			return
		}
		fn(w, r)
	})
	mux.HandleFunc("/admin/", func(w http.ResponseWriter, r *http.Request) {
		b.protectedHits.Add(1)
		auth := r.Header.Get("Authorization")

		b.mu.Lock()
		b.authSeen = append(b.authSeen, auth)
		valid := b.validToken
		b.mu.Unlock()

		if valid == "" || auth != "Bearer "+valid {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"token expired"}`))
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"path": r.URL.Path, "query": r.URL.RawQuery})
	})

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) setValidToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.validToken = token
}

func (b *fakeBackend) onRefresh(fn http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshFn = fn
}

// issueOnRefresh makes the refresh endpoint accept any call, mark access as the valid
// token and answer with access/refresh (refresh omitted when empty).
func (b *fakeBackend) issueOnRefresh(access, refresh string) {
	b.onRefresh(func(w http.ResponseWriter, r *http.Request) {
		b.setValidToken(access)
		writeJSON(w, http.StatusOK, TokenPair{AccessToken: access, RefreshToken: refresh})
	})
}

func (b *fakeBackend) authHeaders() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.authSeen...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTokens(t *testing.T, access, refresh string) *tokenstore.TokenStore {
	t.Helper()
	tokens := tokenstore.New(memstore.New(), memstore.New())
	ctx := context.Background()
	if access != "" {
		require.NoError(t, tokens.SetAccess(ctx, access))
	}
	if refresh != "" {
		require.NoError(t, tokens.SetRefresh(ctx, refresh))
	}
	return tokens
}

func newTestClient(t *testing.T, baseURL string, tokens *tokenstore.TokenStore, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithLogger(logger.NewNopLogger())}, opts...)
	client, err := BuildClient(ClientConfig{BaseURL: baseURL, MaxConcurrentRequests: 16}, tokens, opts...)
	require.NoError(t, err)
	return client
}

func storedTokens(t *testing.T, tokens *tokenstore.TokenStore) (string, string) {
	t.Helper()
	access, err := tokens.Access(context.Background())
	require.NoError(t, err)
	refresh, err := tokens.Refresh(context.Background())
	require.NoError(t, err)
	return access, refresh
}

// refreshCallerLogger counts requests that reached the refresh step after a 401.
type refreshCallerLogger struct {
	logger.Logger
	callers atomic.Int32
}

func newRefreshCallerLogger() *refreshCallerLogger {
	return &refreshCallerLogger{Logger: logger.NewNopLogger()}
}

func (l *refreshCallerLogger) Debug(msg string, fields ...zap.Field) {
	if msg == "Access token rejected, refreshing session" {
		l.callers.Add(1)
	}
	l.Logger.Debug(msg, fields...)
}

// waitForCallers blocks until n requests are about to join the refresh, then gives the last
// one a moment to enter it.
func (l *refreshCallerLogger) waitForCallers(n int32) {
	deadline := time.Now().Add(5 * time.Second)
	for l.callers.Load() < n && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
}
