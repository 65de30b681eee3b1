// httpclient/refresh.go
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deploymenttheory/go-menu-admin-client/response"
	"github.com/deploymenttheory/go-menu-admin-client/status"
)

// RefreshEndpoint is the backend route that exchanges a refresh token for new credentials.
const RefreshEndpoint = "/auth/refresh"

// refreshKey is the single singleflight key: there is only ever one session to refresh.
const refreshKey = "session"

// ErrNoRefreshToken is returned by RefreshTokens when no refresh token is stored.
var ErrNoRefreshToken = errors.New("no refresh token stored")

// ErrMissingAccessToken is returned when a refresh response carries no access token.
var ErrMissingAccessToken = errors.New("refresh response did not include an access token")

// RefreshError is returned when a 401 could not be recovered because the refresh failed.
// Both the refresh failure and the original 401 are reachable with errors.Is and errors.As.
type RefreshError struct {
	Err          error
	Unauthorized *response.APIError
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh failed: %v (original request: %v)", e.Err, e.Unauthorized)
}

func (e *RefreshError) Unwrap() []error {
	return []error{e.Err, e.Unauthorized}
}

// TokenPair is the credential payload of /auth and /auth/refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type retriedKey struct{}

// markRetried flags ctx so a further 401 is returned instead of recovered.
func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

// WithoutRecovery returns a context under which a 401 is returned to the caller instead of
// triggering a refresh and resend. Callers whose request body embeds the tokens use it so a
// stale body is never resent.
func WithoutRecovery(ctx context.Context) context.Context {
	return markRetried(ctx)
}

func isRetried(ctx context.Context) bool {
	retried, _ := ctx.Value(retriedKey{}).(bool)
	return retried
}

// RefreshTokens exchanges the stored refresh token for new credentials. Concurrent callers
// share a single backend call and all observe its result.
func (c *Client) RefreshTokens(ctx context.Context) error {
	return c.sharedRefresh(ctx)
}

// sharedRefresh joins the in-flight refresh or starts one. The flight runs detached from the
// caller's cancellation so one impatient caller cannot fail the others; each caller still
// stops waiting when its own ctx is done.
func (c *Client) sharedRefresh(ctx context.Context) error {
	start := time.Now()
	flightCtx := context.WithoutCancel(ctx)

	ch := c.refreshGroup.DoChan(refreshKey, func() (any, error) {
		rotated, err := c.refresh(flightCtx)
		c.Metrics.ObserveRefresh(err)
		return rotated, err
	})

	select {
	case res := <-ch:
		rotated, _ := res.Val.(bool)
		c.Logger.LogTokenRefresh("token_refresh", res.Shared, rotated, time.Since(start), res.Err)
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// refresh performs POST /auth/refresh and stores the result. It bypasses 401 recovery and the
// concurrency limiter. Tokens are left untouched on any failure.
func (c *Client) refresh(ctx context.Context) (bool, error) {
	accessToken, err := c.tokens.Access(ctx)
	if err != nil {
		return false, fmt.Errorf("read access token: %w", err)
	}
	refreshToken, err := c.tokens.Refresh(ctx)
	if err != nil {
		return false, fmt.Errorf("read refresh token: %w", err)
	}
	if refreshToken == "" {
		return false, ErrNoRefreshToken
	}

	payload, err := marshalBody(TokenPair{AccessToken: accessToken, RefreshToken: refreshToken})
	if err != nil {
		return false, err
	}
	target, err := c.resolveURL(RefreshEndpoint, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.attempt(ctx, http.MethodPost, target, payload, false)
	if err != nil {
		return false, err
	}
	if !status.IsSuccess(resp.StatusCode) {
		return false, response.HandleAPIErrorResponse(resp, c.Logger)
	}

	var pair TokenPair
	if err := response.HandleAPISuccessResponse(resp, &pair, c.Logger); err != nil {
		return false, err
	}
	if pair.AccessToken == "" {
		return false, ErrMissingAccessToken
	}

	if err := c.tokens.SetAccess(ctx, pair.AccessToken); err != nil {
		return false, fmt.Errorf("store access token: %w", err)
	}
	if pair.RefreshToken == "" {
		return false, nil
	}
	if err := c.tokens.SetRefresh(ctx, pair.RefreshToken); err != nil {
		return false, fmt.Errorf("store refresh token: %w", err)
	}
	return true, nil
}
