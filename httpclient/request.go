// httpclient/request.go
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/deploymenttheory/go-menu-admin-client/headers"
	"github.com/deploymenttheory/go-menu-admin-client/response"
	"github.com/deploymenttheory/go-menu-admin-client/status"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Do sends a request to endpoint, relative to the configured base URL.
//
// body is marshaled as JSON; a nil body sends no payload. A successful response body is
// decoded into out (nil discards it). Non-2xx responses are returned as *response.APIError.
// A 401 is recovered once through RefreshTokens when a refresh token is stored.
//
// The returned response always has its body consumed and closed.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any) (*http.Response, error) {
	return c.DoWithQuery(ctx, method, endpoint, nil, body, out)
}

// DoWithQuery is Do with query parameters appended to endpoint.
func (c *Client) DoWithQuery(ctx context.Context, method, endpoint string, query url.Values, body, out any) (*http.Response, error) {
	payload, err := marshalBody(body)
	if err != nil {
		return nil, c.Logger.Error("Failed to marshal request body",
			zap.String("method", method), zap.String("endpoint", endpoint), zap.Error(err))
	}

	target, err := c.resolveURL(endpoint, query)
	if err != nil {
		return nil, err
	}

	return c.execute(ctx, method, target, payload, out)
}

// DoUnauthenticated sends a request without a bearer token and without 401 recovery.
// It is used for the login exchange, where a 401 means bad credentials.
func (c *Client) DoUnauthenticated(ctx context.Context, method, endpoint string, body, out any) (*http.Response, error) {
	payload, err := marshalBody(body)
	if err != nil {
		return nil, c.Logger.Error("Failed to marshal request body",
			zap.String("method", method), zap.String("endpoint", endpoint), zap.Error(err))
	}

	target, err := c.resolveURL(endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.attempt(ctx, method, target, payload, false)
	if err != nil {
		return nil, err
	}
	if status.IsSuccess(resp.StatusCode) {
		return resp, response.HandleAPISuccessResponse(resp, out, c.Logger)
	}

	apiErr := response.HandleAPIErrorResponse(resp, c.Logger)
	c.Logger.LogError("request_error", method, target, resp.StatusCode, resp.Status, apiErr, apiErr.RawResponse)
	return resp, apiErr
}

// execute runs one logical request: an attempt, and at most one resend after a refresh.
func (c *Client) execute(ctx context.Context, method, target string, payload []byte, out any) (*http.Response, error) {
	log := c.Logger

	resp, err := c.attempt(ctx, method, target, payload, true)
	if err != nil {
		return nil, err
	}

	if status.IsSuccess(resp.StatusCode) {
		return resp, response.HandleAPISuccessResponse(resp, out, log)
	}

	apiErr := response.HandleAPIErrorResponse(resp, log)

	if status.IsUnauthorized(resp.StatusCode) && !isRetried(ctx) {
		refreshToken, err := c.tokens.Refresh(ctx)
		if err != nil {
			return resp, fmt.Errorf("read refresh token: %w", err)
		}

		if refreshToken != "" {
			ctx = markRetried(ctx)
			log.Debug("Access token rejected, refreshing session", zap.String("method", method), zap.String("url", target))

			if err := c.RefreshTokens(ctx); err != nil {
				log.LogAuthTokenError("token_refresh_failed", method, target, resp.StatusCode, err)
				return resp, &RefreshError{Err: err, Unauthorized: apiErr}
			}

			c.Metrics.IncRetried()
			return c.execute(ctx, method, target, payload, out)
		}
	}

	if status.IsUnauthorized(resp.StatusCode) {
		log.LogAuthTokenError("unauthorized", method, target, resp.StatusCode, apiErr)
	} else {
		log.LogError("request_error", method, target, resp.StatusCode, resp.Status, apiErr, apiErr.RawResponse)
	}

	return resp, apiErr
}

// attempt sends a single HTTP request. With authorize set it reads the access token, attaches
// it as a bearer credential and holds a concurrency permit until the response body is closed.
func (c *Client) attempt(ctx context.Context, method, target string, payload []byte, authorize bool) (*http.Response, error) {
	log := c.Logger

	var accessToken string
	release := func() {}
	if authorize {
		token, err := c.tokens.Access(ctx)
		if err != nil {
			return nil, fmt.Errorf("read access token: %w", err)
		}
		accessToken = token

		permitID, err := c.Concurrency.AcquireConcurrencyPermit(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire concurrency permit: %w", err)
		}
		c.Metrics.SetPermitsInUse(c.Concurrency.InFlight())

		var once sync.Once
		release = func() {
			once.Do(func() {
				c.Concurrency.ReleaseConcurrencyPermit(permitID)
				c.Metrics.SetPermitsInUse(c.Concurrency.InFlight())
			})
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			release()
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		release()
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	headerHandler := headers.NewHeaderHandler(req, log, c.config.HideSensitiveData)
	headerHandler.SetAuthorization(accessToken)
	if payload != nil {
		headerHandler.SetContentType(headers.ContentTypeJSON)
	}
	headerHandler.SetAccept(headers.ContentTypeJSON)
	headerHandler.SetUserAgent(c.config.UserAgent)
	headerHandler.SetRequestID(requestID)
	headerHandler.LogHeaders("request_start")

	startTime := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		release()
		c.Metrics.ObserveRequest(method, "error", duration)
		log.Warn("Failed to send request",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("url", target),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}

	c.Metrics.ObserveRequest(method, status.Class(resp.StatusCode), duration)
	log.LogRequestEnd("request_end", method, target, resp.StatusCode, duration)

	resp.Body = &permitBody{ReadCloser: resp.Body, release: release}
	return resp, nil
}

// permitBody releases the request's concurrency permit once the body is closed.
type permitBody struct {
	io.ReadCloser
	release func()
}

func (b *permitBody) Close() error {
	err := b.ReadCloser.Close()
	b.release()
	return err
}

func marshalBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		return json.Marshal(body)
	}
}
