// httpclient/client.go
/* Package httpclient provides the HTTP client used for every call to the menu admin API.

Every request carries the stored access token as a bearer credential. When the backend
answers 401 and a refresh token is available, the client refreshes the session once,
shared by every request that hit the 401 at the same time, and resends the original
request a single time. Concurrency limits, throttling, redirects and proxying are
configured through ClientConfig. */
package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/deploymenttheory/go-menu-admin-client/concurrency"
	"github.com/deploymenttheory/go-menu-admin-client/cookiejar"
	"github.com/deploymenttheory/go-menu-admin-client/logger"
	"github.com/deploymenttheory/go-menu-admin-client/metrics"
	"github.com/deploymenttheory/go-menu-admin-client/proxy"
	"github.com/deploymenttheory/go-menu-admin-client/redirecthandler"
	"github.com/deploymenttheory/go-menu-admin-client/tokenstore"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Master struct/object
type Client struct {
	config  ClientConfig
	baseURL *url.URL
	http    *http.Client
	tokens  *tokenstore.TokenStore

	refreshGroup singleflight.Group
	limiter      *rate.Limiter

	Logger      logger.Logger
	Metrics     *metrics.Metrics
	Concurrency *concurrency.ConcurrencyHandler
}

// ClientConfig holds the client options. Zero values are replaced by the Default* constants.
type ClientConfig struct {
	// API
	BaseURL   string `json:"base_url"`
	UserAgent string `json:"user_agent,omitempty"`

	// Log
	LogLevel            string `json:"log_level,omitempty"`
	LogOutputFormat     string `json:"log_output_format,omitempty"` // "json" or "console"
	LogConsoleSeparator string `json:"log_console_separator,omitempty"`
	HideSensitiveData   bool   `json:"hide_sensitive_data,omitempty"`

	// Transport
	CustomTimeout         time.Duration `json:"custom_timeout,omitempty"`
	FollowRedirects       bool          `json:"follow_redirects,omitempty"`
	MaxRedirects          int           `json:"max_redirects,omitempty"`
	MaxConcurrentRequests int           `json:"max_concurrent_requests,omitempty"`
	RequestsPerSecond     float64       `json:"requests_per_second,omitempty"` // 0 disables throttling
	ProxyURL              string        `json:"proxy_url,omitempty"`
	EnableCookieJar       bool          `json:"enable_cookie_jar,omitempty"`
}

// Option customises a Client built by BuildClient.
type Option func(*buildOptions)

type buildOptions struct {
	logger     logger.Logger
	metrics    *metrics.Metrics
	httpClient *http.Client
	transport  http.RoundTripper
}

// WithLogger replaces the logger built from the config.
func WithLogger(log logger.Logger) Option {
	return func(o *buildOptions) { o.logger = log }
}

// WithMetrics records request, refresh and retry metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *buildOptions) { o.metrics = m }
}

// WithHTTPClient uses the given client as is; timeout, redirect and proxy settings are not applied to it.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *buildOptions) { o.httpClient = hc }
}

// WithTransport uses rt as the round tripper of the internally built http.Client.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *buildOptions) { o.transport = rt }
}

// BuildClient creates a new HTTP client with the provided configuration.
func BuildClient(config ClientConfig, tokens *tokenstore.TokenStore, opts ...Option) (*Client, error) {
	SetDefaultValuesClientConfig(&config)

	if err := validateClientConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if tokens == nil {
		return nil, fmt.Errorf("invalid configuration: a token store is required")
	}

	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	//region Logging
	log := o.logger
	if log == nil {
		parsedLogLevel := logger.ParseLogLevelFromString(config.LogLevel)
		log = logger.BuildLogger(parsedLogLevel, config.LogOutputFormat, config.LogConsoleSeparator, config.HideSensitiveData)
	}
	//endregion

	baseURL, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil {
		return nil, log.Error("Failed to parse base URL", zap.String("base_url", config.BaseURL), zap.Error(err))
	}

	//region HTTP
	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.CustomTimeout}

		switch {
		case o.transport != nil:
			httpClient.Transport = o.transport
		case config.ProxyURL != "":
			transport := http.DefaultTransport.(*http.Transport).Clone()
			if err := proxy.ConfigureProxy(transport, config.ProxyURL, log); err != nil {
				return nil, err
			}
			httpClient.Transport = transport
		}

		if err := cookiejar.SetupCookieJar(httpClient, config.EnableCookieJar, log); err != nil {
			return nil, err
		}

		if err := redirecthandler.SetupRedirectHandler(httpClient, config.FollowRedirects, config.MaxRedirects, log); err != nil {
			log.Error("Failed to set up redirect handler", zap.Error(err))
			return nil, err
		}
	}
	//endregion

	client := &Client{
		config:      config,
		baseURL:     baseURL,
		http:        httpClient,
		tokens:      tokens,
		Logger:      log,
		Metrics:     o.metrics,
		Concurrency: concurrency.NewConcurrencyHandler(config.MaxConcurrentRequests, log),
	}
	if config.RequestsPerSecond > 0 {
		burst := int(config.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		client.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}

	log.Debug("New API client initialized",
		zap.String("base_url", baseURL.String()),
		zap.String("log_level", config.LogLevel),
		zap.String("log_encoding_format", config.LogOutputFormat),
		zap.Bool("hide_sensitive_data", config.HideSensitiveData),
		zap.Duration("custom_timeout", config.CustomTimeout),
		zap.Bool("follow_redirects", config.FollowRedirects),
		zap.Int("max_redirects", config.MaxRedirects),
		zap.Int("max_concurrent_requests", config.MaxConcurrentRequests),
		zap.Float64("requests_per_second", config.RequestsPerSecond),
		zap.Bool("proxy_enabled", config.ProxyURL != ""),
		zap.Bool("cookie_jar_enabled", config.EnableCookieJar),
	)

	return client, nil
}

// Tokens returns the token store the client reads credentials from.
func (c *Client) Tokens() *tokenstore.TokenStore {
	return c.tokens
}

// Config returns the effective configuration, defaults applied.
func (c *Client) Config() ClientConfig {
	return c.config
}

// resolveURL joins endpoint onto the base URL. Query parameters in endpoint are kept.
func (c *Client) resolveURL(endpoint string, query url.Values) (string, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}

	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")

	values := ref.Query()
	for k, vs := range query {
		for _, v := range vs {
			values.Add(k, v)
		}
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}
