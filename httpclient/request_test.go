// httpclient/request_test.go
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/deploymenttheory/go-menu-admin-client/response"
	"github.com/deploymenttheory/go-menu-admin-client/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_BearerHeaderIffTokenStored(t *testing.T) {
	tests := []struct {
		name       string
		access     string
		wantHeader string
	}{
		{name: "token stored", access: "T1", wantHeader: "Bearer T1"},
		{name: "no token", access: "", wantHeader: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotHeader string
			var present bool
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotHeader = r.Header.Get("Authorization")
				_, present = r.Header["Authorization"]
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, newTokens(t, tt.access, ""))

			_, err := client.Do(context.Background(), http.MethodGet, "/admin/blocks", nil, nil)

			require.NoError(t, err)
			assert.Equal(t, tt.wantHeader, gotHeader)
			assert.Equal(t, tt.wantHeader != "", present)
		})
	}
}

func TestDo_RequestShape(t *testing.T) {
	var got struct {
		method, path, query, contentType, accept, userAgent, requestID string
		body                                                           map[string]any
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.contentType = r.Header.Get("Content-Type")
		got.accept = r.Header.Get("Accept")
		got.userAgent = r.Header.Get("User-Agent")
		got.requestID = r.Header.Get("X-Request-ID")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got.body)
		writeJSON(w, http.StatusOK, map[string]string{"id": "b1", "title": "Menu"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL+"/api/", newTokens(t, "T1", ""))

	var out struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	_, err := client.Patch(context.Background(), "/admin/blocks/search-visibility", url.Values{"id": {"b1"}},
		map[string]bool{"is_searchable": true}, &out)

	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, got.method)
	assert.Equal(t, "/api/admin/blocks/search-visibility", got.path)
	assert.Equal(t, "id=b1", got.query)
	assert.Equal(t, "application/json", got.contentType)
	assert.Equal(t, "application/json", got.accept)
	assert.Equal(t, version.GetUserAgent(), got.userAgent)
	assert.NotEmpty(t, got.requestID)
	assert.Equal(t, map[string]any{"is_searchable": true}, got.body)
	assert.Equal(t, "b1", out.ID)
	assert.Equal(t, "Menu", out.Title)
}

func TestDo_NonAuthErrorReturnedUnchanged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]string{{"msg": "title required"}}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, newTokens(t, "T1", "R1"))

	resp, err := client.Post(context.Background(), "/admin/blocks", nil, map[string]string{}, nil)

	require.Error(t, err)
	var apiErr *response.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "title required", apiErr.Message)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDo_TransportErrorNotRetried(t *testing.T) {
	backend := newFakeBackend(t, "T1")
	backend.issueOnRefresh("T2", "")
	baseURL := backend.server.URL
	backend.server.Close()

	client := newTestClient(t, baseURL, newTokens(t, "T1", "R1"))

	resp, err := client.Get(context.Background(), "/admin/blocks", nil, nil)

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 0, response.StatusCode(err))
	assert.Equal(t, int32(0), backend.refreshHits.Load())
}

func TestDo_ContextCancelled(t *testing.T) {
	backend := newFakeBackend(t, "T1")
	client := newTestClient(t, backend.server.URL, newTokens(t, "T1", ""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, "/admin/blocks", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoUnauthenticated_NoBearerNoRecovery(t *testing.T) {
	var authSeen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authSeen = append(authSeen, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid credentials"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, newTokens(t, "T1", "R1"))

	resp, err := client.DoUnauthenticated(context.Background(), http.MethodPost, "/auth",
		map[string]string{"username": "a", "password": "wrong"}, nil)

	require.Error(t, err)
	assert.True(t, response.IsUnauthorized(err))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, []string{""}, authSeen)

	access, refresh := storedTokens(t, client.Tokens())
	assert.Equal(t, "T1", access)
	assert.Equal(t, "R1", refresh)
}

func TestAttempt_PermitHeldUntilBodyClosed(t *testing.T) {
	backend := newFakeBackend(t, "T1")
	client := newTestClient(t, backend.server.URL, newTokens(t, "T1", ""))
	target, err := client.resolveURL("/admin/blocks", nil)
	require.NoError(t, err)

	resp, err := client.attempt(context.Background(), http.MethodGet, target, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 1, client.Concurrency.InFlight())

	_, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, client.Concurrency.InFlight())

	require.NoError(t, resp.Body.Close())
	assert.Equal(t, 0, client.Concurrency.InFlight())

	_ = resp.Body.Close()
	assert.Equal(t, 0, client.Concurrency.InFlight())

	_, err = client.Get(context.Background(), "/admin/blocks", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, client.Concurrency.InFlight())
}

func TestResolveURL(t *testing.T) {
	client := newTestClient(t, "https://api.example.com/v1/", newTokens(t, "", ""))

	got, err := client.resolveURL("admin/blocks?id=7", url.Values{"page": {"2"}})

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1/admin/blocks?id=7&page=2", got)
}
