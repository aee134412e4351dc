package http

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitTransport holds each attempt until a token is available. It sits
// below RetryTransport so retries are throttled too.
type RateLimitTransport struct {
	limiter *rate.Limiter
	next    http.RoundTripper
}

// NewRateLimitTransport allows requestsPerSecond attempts per second with a
// burst of the same size (at least one).
func NewRateLimitTransport(next http.RoundTripper, requestsPerSecond float64) *RateLimitTransport {
	return &RateLimitTransport{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), max(int(requestsPerSecond), 1)),
		next:    next,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *RateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	err := t.limiter.Wait(req.Context())
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}

		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	return t.next.RoundTrip(req)
}
