// searchstats/searchstats_test.go
package searchstats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/deploymenttheory/go-menu-admin-client/httpclient"
	"github.com/deploymenttheory/go-menu-admin-client/logger"
	"github.com/deploymenttheory/go-menu-admin-client/response"
	"github.com/deploymenttheory/go-menu-admin-client/tokenstore"
	"github.com/deploymenttheory/go-menu-admin-client/tokenstore/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.HandlerFunc) *httpclient.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := httpclient.BuildClient(httpclient.ClientConfig{BaseURL: server.URL},
		tokenstore.New(memstore.New(), memstore.New()), httpclient.WithLogger(logger.NewNopLogger()))
	require.NoError(t, err)
	return client
}

func statsHandler(hits *atomic.Int32, worstStatus int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/admin/search-stats/top":
			_, _ = w.Write([]byte(`[{"query":"menu","count":42},{"query":"pizza","count":7}]`))
		case "/admin/search-stats/worst":
			w.WriteHeader(worstStatus)
			_, _ = w.Write([]byte(`[{"query":"sushi","count":3}]`))
		default:
			http.NotFound(w, r)
		}
	}
}

func TestService_TopAndWorst(t *testing.T) {
	var hits atomic.Int32
	svc := NewService(newClient(t, statsHandler(&hits, http.StatusOK)))

	top, err := svc.Top(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []SearchQueryStat{{Query: "menu", Count: 42}, {Query: "pizza", Count: 7}}, top)

	worst, err := svc.Worst(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []SearchQueryStat{{Query: "sushi", Count: 3}}, worst)
}

func TestService_Both(t *testing.T) {
	var hits atomic.Int32
	svc := NewService(newClient(t, statsHandler(&hits, http.StatusOK)))

	report, err := svc.Both(context.Background())

	require.NoError(t, err)
	assert.Len(t, report.Top, 2)
	assert.Len(t, report.Worst, 1)
	assert.Equal(t, int32(2), hits.Load())
}

func TestService_BothFailure(t *testing.T) {
	var hits atomic.Int32
	svc := NewService(newClient(t, statsHandler(&hits, http.StatusBadGateway)))

	report, err := svc.Both(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "worst queries")
	assert.Equal(t, http.StatusBadGateway, response.StatusCode(err))
	assert.Empty(t, report.Top)
}
