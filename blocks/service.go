// blocks/service.go
package blocks

import (
	"context"
	"net/http"
	"net/url"

	"github.com/deploymenttheory/go-menu-admin-client/logger"
	"go.uber.org/zap"
)

const (
	blocksEndpoint           = "/admin/blocks"
	searchVisibilityEndpoint = "/admin/blocks/search-visibility"
	reorderEndpoint          = "/admin/blocks/reorder"
)

// APIClient is the subset of the HTTP client used by the service.
type APIClient interface {
	Get(ctx context.Context, endpoint string, query url.Values, out any) (*http.Response, error)
	Post(ctx context.Context, endpoint string, query url.Values, body, out any) (*http.Response, error)
	Patch(ctx context.Context, endpoint string, query url.Values, body, out any) (*http.Response, error)
}

// Service calls the menu block endpoints.
type Service struct {
	client APIClient
	log    logger.Logger
}

// NewService returns a Service. A nil log discards reorder warnings.
func NewService(client APIClient, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Service{client: client, log: log}
}

// List returns every block.
func (s *Service) List(ctx context.Context) ([]Block, error) {
	var out []Block
	if _, err := s.client.Get(ctx, blocksEndpoint, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a single block.
func (s *Service) Get(ctx context.Context, id string) (Block, error) {
	var out Block
	_, err := s.client.Get(ctx, blocksEndpoint, idQuery(id), &out)
	return out, err
}

// Create creates a block and returns it as stored by the backend.
func (s *Service) Create(ctx context.Context, payload BlockCreate) (Block, error) {
	var out Block
	_, err := s.client.Post(ctx, blocksEndpoint, nil, payload, &out)
	return out, err
}

// Update applies a partial update to block id.
func (s *Service) Update(ctx context.Context, id string, payload BlockUpdate) (Block, error) {
	var out Block
	_, err := s.client.Patch(ctx, blocksEndpoint, idQuery(id), payload, &out)
	return out, err
}

// SetSearchVisibility includes or excludes block id from search.
func (s *Service) SetSearchVisibility(ctx context.Context, id string, isSearchable bool) error {
	body := struct {
		IsSearchable bool `json:"is_searchable"`
	}{IsSearchable: isSearchable}
	_, err := s.client.Patch(ctx, searchVisibilityEndpoint, idQuery(id), body, nil)
	return err
}

// Reorder persists the display order. Ordering is cosmetic, so failures are logged and dropped.
func (s *Service) Reorder(ctx context.Context, ids []string) {
	body := struct {
		IDs []string `json:"ids"`
	}{IDs: ids}
	if _, err := s.client.Post(ctx, reorderEndpoint, nil, body, nil); err != nil {
		s.log.Warn("Failed to persist block order", zap.Int("blocks", len(ids)), zap.Error(err))
	}
}

func idQuery(id string) url.Values {
	return url.Values{"id": {id}}
}
