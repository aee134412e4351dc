package http

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/fivetwenty-io/stocktrim-client/internal/constants"
	"github.com/fivetwenty-io/stocktrim-client/pkg/stocktrim"
	"github.com/hashicorp/go-retryablehttp"
)

// Credentials is the tenant identifier and signature pair sent on every
// request. It is never logged.
type Credentials struct {
	AuthID        string
	AuthSignature string
}

// RetryPolicy is applied identically to every request.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
	// RetryWaitMin is the delay before the first retry; it doubles on each
	// further retry.
	RetryWaitMin time.Duration
	// RetryWaitMax caps every delay, including Retry-After hints.
	RetryWaitMax time.Duration
	// Timeout bounds each attempt.
	Timeout time.Duration
}

// DefaultRetryPolicy returns the default retry configuration.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   constants.DefaultRetryMax,
		RetryWaitMin: constants.DefaultRetryWaitMin,
		RetryWaitMax: constants.DefaultRetryWaitMax,
		Timeout:      constants.DefaultHTTPTimeout,
	}
}

// RetryTransport attaches the authentication headers to each request and
// delivers it with bounded exponential backoff.
//
// Connection errors, timeouts, read errors, 429 and 5xx responses are
// retried. When retries run out on a response, that last response is
// returned with a nil error so callers can still decode its body. When they
// run out on a network error, the error is returned.
type RetryTransport struct {
	credentials Credentials
	logger      stocktrim.Logger
	roundTrip   *retryablehttp.RoundTripper
}

var _ http.RoundTripper = (*RetryTransport)(nil)

// NewRetryTransport wraps base, the transport each attempt is sent through.
func NewRetryTransport(base http.RoundTripper, credentials Credentials, policy RetryPolicy, logger stocktrim.Logger) *RetryTransport {
	if logger == nil {
		logger = stocktrim.NopLogger{}
	}

	transport := &RetryTransport{
		credentials: credentials,
		logger:      logger,
	}

	client := retryablehttp.NewClient()
	client.HTTPClient = &http.Client{
		Transport: base,
		Timeout:   policy.Timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	client.RetryMax = max(policy.MaxRetries, 0)
	client.RetryWaitMin = policy.RetryWaitMin
	client.RetryWaitMax = policy.RetryWaitMax
	client.CheckRetry = transport.checkRetry
	client.Backoff = BoundedBackoff
	client.ErrorHandler = transport.handleExhausted
	client.Logger = leveledLogger{logger: logger}

	transport.roundTrip = &retryablehttp.RoundTripper{Client: client}

	return transport
}

// RoundTrip implements http.RoundTripper.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	authed := req.Clone(req.Context())
	if authed.Header == nil {
		authed.Header = make(http.Header)
	}

	authed.Header.Set(constants.HeaderAuthID, t.credentials.AuthID)
	authed.Header.Set(constants.HeaderAuthSignature, t.credentials.AuthSignature)

	return t.roundTrip.RoundTrip(authed)
}

func (t *RetryTransport) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		if !IsTransientError(err) {
			return false, nil
		}

		t.logger.Warn("Network error, retrying with exponential backoff", map[string]interface{}{
			"error": err.Error(),
		})

		return true, nil
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		t.logger.Warn("Rate limited, retrying after exponential backoff", map[string]interface{}{
			"status_code": resp.StatusCode,
		})

		return true, nil
	case resp.StatusCode >= 500 && resp.StatusCode < 600:
		t.logger.Warn(fmt.Sprintf("Server error %d, retrying with exponential backoff", resp.StatusCode), map[string]interface{}{
			"status_code": resp.StatusCode,
		})

		return true, nil
	}

	return false, nil
}

// handleExhausted runs when the final attempt still failed. A delivered
// response is handed back untouched; an error discards any response.
func (t *RetryTransport) handleExhausted(resp *http.Response, err error, numTries int) (*http.Response, error) {
	if err != nil {
		if resp != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}

		t.logger.Error(fmt.Sprintf("Request failed after %d attempts", numTries), map[string]interface{}{
			"error":    err.Error(),
			"attempts": numTries,
		})

		return nil, err
	}

	if resp != nil {
		t.logger.Error(fmt.Sprintf("Request failed after %d attempts, returning last response", numTries), map[string]interface{}{
			"status_code": resp.StatusCode,
			"attempts":    numTries,
		})
	}

	return retryablehttp.PassthroughErrorHandler(resp, nil, numTries)
}

// BoundedBackoff waits minWait * 2^attemptNum, capped at maxWait. A
// Retry-After hint on 429/503 may lengthen the wait but never shortens it
// and never exceeds maxWait, so delays are non-decreasing.
func BoundedBackoff(minWait, maxWait time.Duration, attemptNum int, resp *http.Response) time.Duration {
	exponential := retryablehttp.DefaultBackoff(minWait, maxWait, attemptNum, nil)
	hinted := retryablehttp.DefaultBackoff(minWait, maxWait, attemptNum, resp)

	return min(max(exponential, hinted), maxWait)
}

// IsTransientError reports whether a network-level failure is worth
// retrying: connect errors, timeouts and read errors. Certificate failures,
// malformed requests and cancellations are not.
func IsTransientError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var (
		certErr      *tls.CertificateVerificationError
		authorityErr x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
	)
	if errors.As(err, &certErr) || errors.As(err, &authorityErr) || errors.As(err, &hostnameErr) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED)
}

// leveledLogger routes retryablehttp's own diagnostics to Debug.
type leveledLogger struct {
	logger stocktrim.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keyValueFields(keysAndValues))
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keyValueFields(keysAndValues))
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keyValueFields(keysAndValues))
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keyValueFields(keysAndValues))
}

func keyValueFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		value := keysAndValues[i+1]
		if err, ok := value.(error); ok {
			value = err.Error()
		}

		fields[key] = value
	}

	if len(keysAndValues)%2 == 1 {
		fields["extra"] = keysAndValues[len(keysAndValues)-1]
	}

	return fields
}
