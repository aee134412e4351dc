package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/fivetwenty-io/stocktrim-client/internal/constants"
	internalhttp "github.com/fivetwenty-io/stocktrim-client/internal/http"
	"github.com/fivetwenty-io/stocktrim-client/pkg/stocktrim"
	"github.com/hashicorp/go-cleanhttp"
)

// Client implements the stocktrim.Client interface.
type Client struct {
	baseURL     string
	userAgent   string
	credentials internalhttp.Credentials
	policy      internalhttp.RetryPolicy
	rateLimit   float64
	logger      stocktrim.Logger
	transport   http.RoundTripper

	mu         sync.Mutex
	closed     bool
	pool       *http.Transport
	httpClient *http.Client
	requester  *internalhttp.Client
}

var _ stocktrim.Client = (*Client)(nil)

// New validates config and returns a client. No connection is opened until
// the first request.
func New(config *stocktrim.Config) (*Client, error) {
	if config == nil {
		config = &stocktrim.Config{}
	}

	envFile := config.EnvFile
	if envFile == "" {
		envFile = constants.DefaultEnvFile
	}

	env, err := stocktrim.LoadEnvironment(envFile)
	if err != nil {
		return nil, err
	}

	credentials, err := resolveCredentials(config, env)
	if err != nil {
		return nil, err
	}

	baseURL, err := resolveBaseURL(config, env)
	if err != nil {
		return nil, err
	}

	policy, err := resolvePolicy(config, env)
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = stocktrim.NopLogger{}
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = constants.DefaultUserAgent
	}

	return &Client{
		baseURL:     baseURL,
		userAgent:   userAgent,
		credentials: credentials,
		policy:      policy,
		rateLimit:   config.RequestsPerSecond,
		logger:      logger,
		transport:   config.Transport,
	}, nil
}

func resolveCredentials(config *stocktrim.Config, env *stocktrim.Environment) (internalhttp.Credentials, error) {
	credentials := internalhttp.Credentials{
		AuthID:        firstNonEmpty(config.APIAuthID, env.APIAuthID),
		AuthSignature: firstNonEmpty(config.APIAuthSignature, env.APIAuthSignature),
	}

	if credentials.AuthID == "" {
		return credentials, &stocktrim.ConfigError{
			Field: "APIAuthID",
			Err:   fmt.Errorf("%w: set Config.APIAuthID or %s", stocktrim.ErrMissingCredentials, constants.EnvAuthID),
		}
	}

	if credentials.AuthSignature == "" {
		return credentials, &stocktrim.ConfigError{
			Field: "APIAuthSignature",
			Err:   fmt.Errorf("%w: set Config.APIAuthSignature or %s", stocktrim.ErrMissingCredentials, constants.EnvAuthSignature),
		}
	}

	return credentials, nil
}

func resolveBaseURL(config *stocktrim.Config, env *stocktrim.Environment) (string, error) {
	baseURL := firstNonEmpty(config.BaseURL, env.BaseURL, constants.DefaultBaseURL)

	parsed, err := url.Parse(baseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", &stocktrim.ConfigError{
			Field: "BaseURL",
			Err:   fmt.Errorf("%w: %q", stocktrim.ErrInvalidBaseURL, baseURL),
		}
	}

	return baseURL, nil
}

func resolvePolicy(config *stocktrim.Config, env *stocktrim.Environment) (internalhttp.RetryPolicy, error) {
	policy := internalhttp.DefaultRetryPolicy()

	switch {
	case config.MaxRetries != 0:
		policy.MaxRetries = max(config.MaxRetries, 0)
	case env.MaxRetries != 0:
		policy.MaxRetries = max(env.MaxRetries, 0)
	}

	switch {
	case config.Timeout > 0:
		policy.Timeout = config.Timeout
	case env.Timeout > 0:
		policy.Timeout = env.Timeout
	}

	if config.RetryWaitMin > 0 {
		policy.RetryWaitMin = config.RetryWaitMin
	}

	if config.RetryWaitMax > 0 {
		policy.RetryWaitMax = config.RetryWaitMax
	}

	if policy.RetryWaitMin > policy.RetryWaitMax {
		return policy, &stocktrim.ConfigError{
			Field: "RetryWaitMin",
			Err: fmt.Errorf("%w: %s exceeds %s",
				stocktrim.ErrInvalidRetryWindows, policy.RetryWaitMin, policy.RetryWaitMax),
		}
	}

	return policy, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}

	return ""
}

// HTTPClient returns the shared *http.Client, building the transport chain
// on first use.
func (c *Client) HTTPClient() (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, stocktrim.ErrClientClosed
	}

	if c.httpClient == nil {
		c.build()
	}

	return c.httpClient, nil
}

// build assembles logging -> retry -> [rate limit] -> pool. Callers hold mu.
func (c *Client) build() {
	base := c.transport
	if base == nil {
		c.pool = cleanhttp.DefaultPooledTransport()
		base = c.pool
	}

	if c.rateLimit > 0 {
		base = internalhttp.NewRateLimitTransport(base, c.rateLimit)
	}

	retry := internalhttp.NewRetryTransport(base, c.credentials, c.policy, c.logger)

	c.httpClient = &http.Client{
		Transport: internalhttp.NewLoggingTransport(retry, c.logger),
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	c.requester = internalhttp.NewClient(c.baseURL, c.httpClient, internalhttp.WithUserAgent(c.userAgent))

	c.logger.Debug("Transport chain initialized", map[string]interface{}{
		"base_url":    c.baseURL,
		"max_retries": c.policy.MaxRetries,
		"timeout":     c.policy.Timeout.String(),
	})
}

func (c *Client) getRequester() (*internalhttp.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, stocktrim.ErrClientClosed
	}

	if c.requester == nil {
		c.build()
	}

	return c.requester, nil
}

// Do sends req through the transport chain.
func (c *Client) Do(ctx context.Context, req *stocktrim.Request) (*stocktrim.Response, error) {
	requester, err := c.getRequester()
	if err != nil {
		return nil, err
	}

	return requester.Do(ctx, req)
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*stocktrim.Response, error) {
	return c.Do(ctx, &stocktrim.Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*stocktrim.Response, error) {
	return c.Do(ctx, &stocktrim.Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put sends a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*stocktrim.Response, error) {
	return c.Do(ctx, &stocktrim.Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch sends a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*stocktrim.Response, error) {
	return c.Do(ctx, &stocktrim.Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) (*stocktrim.Response, error) {
	return c.Do(ctx, &stocktrim.Request{Method: http.MethodDelete, Path: path, Query: query})
}

// Close releases idle pooled connections and marks the client closed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true

	if c.pool != nil {
		c.pool.CloseIdleConnections()
	} else if closer, ok := c.transport.(interface{ CloseIdleConnections() }); ok && c.httpClient != nil {
		closer.CloseIdleConnections()
	}

	c.httpClient = nil
	c.requester = nil

	return nil
}

// BaseURL returns the resolved API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// MaxRetries returns the resolved retry count.
func (c *Client) MaxRetries() int {
	return c.policy.MaxRetries
}

// Timeout returns the per-attempt timeout.
func (c *Client) Timeout() time.Duration {
	return c.policy.Timeout
}

// String describes the client without credentials.
func (c *Client) String() string {
	return fmt.Sprintf("StockTrimClient(base_url=%q, max_retries=%d)", c.baseURL, c.policy.MaxRetries)
}
