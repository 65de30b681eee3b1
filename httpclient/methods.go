// httpclient/methods.go
package httpclient

import (
	"context"
	"net/http"
	"net/url"
)

// Get sends a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values, out any) (*http.Response, error) {
	return c.DoWithQuery(ctx, http.MethodGet, endpoint, query, nil, out)
}

// Post sends body as JSON with POST.
func (c *Client) Post(ctx context.Context, endpoint string, query url.Values, body, out any) (*http.Response, error) {
	return c.DoWithQuery(ctx, http.MethodPost, endpoint, query, body, out)
}

// Put sends body as JSON with PUT.
func (c *Client) Put(ctx context.Context, endpoint string, query url.Values, body, out any) (*http.Response, error) {
	return c.DoWithQuery(ctx, http.MethodPut, endpoint, query, body, out)
}

// Patch sends body as JSON with PATCH.
func (c *Client) Patch(ctx context.Context, endpoint string, query url.Values, body, out any) (*http.Response, error) {
	return c.DoWithQuery(ctx, http.MethodPatch, endpoint, query, body, out)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string, query url.Values, out any) (*http.Response, error) {
	return c.DoWithQuery(ctx, http.MethodDelete, endpoint, query, nil, out)
}
