package stocktrim

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Client is the StockTrim API client facade.
//
// Every request made through a Client, whether via Do or via the underlying
// *http.Client returned by HTTPClient, passes through the same transport
// chain: request logging, then authentication and retry, then the shared
// connection pool.
type Client interface {
	// HTTPClient returns the shared *http.Client, building the transport
	// chain on first use.
	HTTPClient() (*http.Client, error)

	Do(ctx context.Context, req *Request) (*Response, error)
	Get(ctx context.Context, path string, query url.Values) (*Response, error)
	Post(ctx context.Context, path string, body interface{}) (*Response, error)
	Put(ctx context.Context, path string, body interface{}) (*Response, error)
	Patch(ctx context.Context, path string, body interface{}) (*Response, error)
	Delete(ctx context.Context, path string, query url.Values) (*Response, error)

	// Close releases the connection pool. It is safe to call more than
	// once and on a client that never made a request.
	Close() error
}

// Request describes one API call relative to the configured base URL.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Config represents client configuration.
//
// # Credentials
//
// APIAuthID and APIAuthSignature are sent on every request as the
// api-auth-id and api-auth-signature headers. When either is empty the
// client falls back to STOCKTRIM_API_AUTH_ID and STOCKTRIM_API_AUTH_SIGNATURE
// from the environment or from EnvFile. Construction fails if a value is
// still missing.
//
// # Timeouts and retries
//
// Timeout bounds each attempt, not the whole retry sequence; use the request
// context to bound the sequence. Retries apply to connection errors,
// timeouts, read errors, 429 and 5xx responses. When retries run out on a
// 429/5xx the last response is returned as a normal response.
type Config struct {
	// BaseURL is the API root. Defaults to https://api.stocktrim.com or
	// STOCKTRIM_BASE_URL.
	BaseURL string

	APIAuthID        string
	APIAuthSignature string

	// EnvFile is the dotenv file consulted for missing values. Defaults to
	// ".env" in the working directory; a missing file is not an error.
	EnvFile string

	// Timeout bounds a single attempt. If 0, DefaultHTTPTimeout is used.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt. If 0 the
	// default (5) is used; a negative value disables retries.
	MaxRetries int
	// RetryWaitMin is the first backoff delay.
	RetryWaitMin time.Duration
	// RetryWaitMax caps every backoff delay.
	RetryWaitMax time.Duration

	// RequestsPerSecond enables client-side rate limiting of attempts when
	// greater than zero.
	RequestsPerSecond float64

	// Logger receives transport logs. Defaults to NopLogger.
	Logger Logger

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Transport replaces the pooled network transport at the bottom of the
	// chain. Intended for tests and custom dialers.
	Transport http.RoundTripper
}
