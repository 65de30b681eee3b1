// employees/employees.go
// Package employees lists the bot users known to the admin API.
package employees

import (
	"context"
	"net/http"
	"net/url"
)

const employeesEndpoint = "/admin/employees"

// Employee is a Telegram user registered with the bot.
type Employee struct {
	ID        int64  `json:"id"`
	TgName    string `json:"tg_name"`
	TgID      int64  `json:"tg_id"`
	CreatedAt string `json:"created_at,omitempty"`
	IsBlocked *bool  `json:"is_blocked,omitempty"`
}

// Blocked reports whether the employee is blocked.
func (e Employee) Blocked() bool {
	return e.IsBlocked != nil && *e.IsBlocked
}

// APIClient is the subset of the HTTP client used by the service.
type APIClient interface {
	Get(ctx context.Context, endpoint string, query url.Values, out any) (*http.Response, error)
}

// Service calls the employee endpoints.
type Service struct {
	client APIClient
}

func NewService(client APIClient) *Service {
	return &Service{client: client}
}

// List returns every employee.
func (s *Service) List(ctx context.Context) ([]Employee, error) {
	var out []Employee
	if _, err := s.client.Get(ctx, employeesEndpoint, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
