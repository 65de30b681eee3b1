// redirecthandler/redirecthandler_test.go
package redirecthandler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deploymenttheory/go-menu-admin-client/logger"
	"github.com/deploymenttheory/go-menu-admin-client/mocklogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func redirectChain(method string, urls ...string) []*http.Request {
	via := make([]*http.Request, 0, len(urls))
	for _, u := range urls {
		via = append(via, httptest.NewRequest(method, u, nil))
	}
	return via
}

func nextRequest(method, target string, statusCode int) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.Response = &http.Response{StatusCode: statusCode}
	return req
}

func TestRedirectHandler_CheckRedirect(t *testing.T) {
	tests := []struct {
		name        string
		via         []*http.Request
		next        *http.Request
		maxRedirect int
		wantErr     error
		wantErrType any
	}{
		{
			name:        "follow same host GET",
			via:         redirectChain(http.MethodGet, "http://api.test/admin/blocks"),
			next:        nextRequest(http.MethodGet, "http://api.test/admin/blocks/", http.StatusMovedPermanently),
			maxRedirect: 5,
		},
		{
			name:        "refuse POST",
			via:         redirectChain(http.MethodPost, "http://api.test/auth"),
			next:        nextRequest(http.MethodGet, "http://api.test/login", http.StatusFound),
			maxRedirect: 5,
			wantErr:     http.ErrUseLastResponse,
		},
		{
			name:        "refuse PATCH",
			via:         redirectChain(http.MethodPatch, "http://api.test/admin/blocks?id=1"),
			next:        nextRequest(http.MethodPatch, "http://api.test/admin/blocks/?id=1", http.StatusPermanentRedirect),
			maxRedirect: 5,
			wantErr:     http.ErrUseLastResponse,
		},
		{
			name:        "max redirects reached",
			via:         redirectChain(http.MethodGet, "http://api.test/a", "http://api.test/b"),
			next:        nextRequest(http.MethodGet, "http://api.test/c", http.StatusFound),
			maxRedirect: 2,
			wantErrType: &MaxRedirectsError{},
		},
		{
			name:        "loop detected",
			via:         redirectChain(http.MethodGet, "http://api.test/a", "http://api.test/b"),
			next:        nextRequest(http.MethodGet, "http://api.test/a", http.StatusFound),
			maxRedirect: 10,
			wantErrType: &RedirectLoopError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewRedirectHandler(logger.NewNopLogger(), tt.maxRedirect)

			err := handler.checkRedirect(tt.next, tt.via)

			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrType != nil:
				require.Error(t, err)
				assert.IsType(t, tt.wantErrType, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestRedirectHandler_CrossHostStripsCredentials(t *testing.T) {
	mockLog := mocklogger.NewMockLogger()
	mockLog.On("Debug", "Removed sensitive header on cross-host redirect", mock.Anything).Twice()
	mockLog.On("Info", "Redirecting request", mock.Anything).Once()

	handler := NewRedirectHandler(mockLog, 5)
	next := nextRequest(http.MethodGet, "http://cdn.other/admin/blocks", http.StatusFound)
	next.Header.Set("Authorization", "Bearer A1")
	next.Header.Set("Cookie", "session=1")

	err := handler.checkRedirect(next, redirectChain(http.MethodGet, "http://api.test/admin/blocks"))

	require.NoError(t, err)
	assert.Empty(t, next.Header.Get("Authorization"))
	assert.Empty(t, next.Header.Get("Cookie"))
	mockLog.AssertExpectations(t)
}

func TestRedirectHandler_SameHostKeepsCredentials(t *testing.T) {
	handler := NewRedirectHandler(logger.NewNopLogger(), 5)
	next := nextRequest(http.MethodGet, "http://api.test/admin/blocks/", http.StatusMovedPermanently)
	next.Header.Set("Authorization", "Bearer A1")

	require.NoError(t, handler.checkRedirect(next, redirectChain(http.MethodGet, "http://api.test/admin/blocks")))
	assert.Equal(t, "Bearer A1", next.Header.Get("Authorization"))
}

func TestSetupRedirectHandler(t *testing.T) {
	t.Run("disabled returns last response", func(t *testing.T) {
		client := &http.Client{}
		require.NoError(t, SetupRedirectHandler(client, false, 0, logger.NewNopLogger()))
		require.NotNil(t, client.CheckRedirect)
		assert.Equal(t, http.ErrUseLastResponse, client.CheckRedirect(nil, nil))
	})

	t.Run("invalid max redirects", func(t *testing.T) {
		client := &http.Client{}
		assert.Error(t, SetupRedirectHandler(client, true, 0, logger.NewNopLogger()))
	})

	t.Run("enabled", func(t *testing.T) {
		client := &http.Client{}
		require.NoError(t, SetupRedirectHandler(client, true, 3, logger.NewNopLogger()))
		assert.NotNil(t, client.CheckRedirect)
	})
}
