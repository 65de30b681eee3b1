// searchstats/searchstats.go
// Package searchstats reads the bot's search query statistics.
package searchstats

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"
)

const (
	topEndpoint   = "/admin/search-stats/top"
	worstEndpoint = "/admin/search-stats/worst"
)

// SearchQueryStat is a search query and how often it was asked.
type SearchQueryStat struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// Report holds both rankings.
type Report struct {
	Top   []SearchQueryStat
	Worst []SearchQueryStat
}

// APIClient is the subset of the HTTP client used by the service.
type APIClient interface {
	Get(ctx context.Context, endpoint string, query url.Values, out any) (*http.Response, error)
}

type Service struct {
	client APIClient
}

func NewService(client APIClient) *Service {
	return &Service{client: client}
}

// Top returns the most frequent queries.
func (s *Service) Top(ctx context.Context) ([]SearchQueryStat, error) {
	return s.fetch(ctx, topEndpoint)
}

// Worst returns the queries that most often found nothing.
func (s *Service) Worst(ctx context.Context) ([]SearchQueryStat, error) {
	return s.fetch(ctx, worstEndpoint)
}

// Both fetches Top and Worst concurrently. The first failure cancels the other request.
func (s *Service) Both(ctx context.Context) (Report, error) {
	var report Report
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		top, err := s.Top(ctx)
		if err != nil {
			return fmt.Errorf("top queries: %w", err)
		}
		report.Top = top
		return nil
	})
	g.Go(func() error {
		worst, err := s.Worst(ctx)
		if err != nil {
			return fmt.Errorf("worst queries: %w", err)
		}
		report.Worst = worst
		return nil
	})

	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	return report, nil
}

func (s *Service) fetch(ctx context.Context, endpoint string) ([]SearchQueryStat, error) {
	var out []SearchQueryStat
	if _, err := s.client.Get(ctx, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
