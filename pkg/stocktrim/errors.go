package stocktrim

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Static errors for err113 compliance.
var (
	ErrMissingCredentials  = errors.New("StockTrim API credentials are required")
	ErrInvalidBaseURL      = errors.New("base URL must be an absolute http(s) URL")
	ErrClientClosed        = errors.New("client is closed")
	ErrUnexpectedStatus    = errors.New("unexpected status code")
	ErrInvalidRetryWindows = errors.New("retry wait min must not exceed retry wait max")
)

// ConfigError reports an invalid or incomplete client configuration. It is
// returned at construction time, before any request is attempted.
type ConfigError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Err.Error()
	}

	return fmt.Sprintf("invalid configuration (%s): %v", e.Field, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *ConfigError) Unwrap() error { return e.Err }

// ProblemDetails is the RFC 7807 error body returned by the StockTrim API.
type ProblemDetails struct {
	Type     Optional[string] `json:"type,omitzero"`
	Title    Optional[string] `json:"title,omitzero"`
	Status   Optional[int]    `json:"status,omitzero"`
	Detail   Optional[string] `json:"detail,omitzero"`
	Instance Optional[string] `json:"instance,omitzero"`

	// StatusCode is the HTTP status of the response the problem came from.
	StatusCode int `json:"-"`
}

// Error implements the error interface.
func (p *ProblemDetails) Error() string {
	title := p.Title.OrElse(http.StatusText(p.StatusCode))

	if detail, ok := p.Detail.Get(); ok && detail != "" {
		return fmt.Sprintf("%s: %s (status: %d)", title, detail, p.StatusCode)
	}

	return fmt.Sprintf("%s (status: %d)", title, p.StatusCode)
}

// ParseProblemDetails parses a problem-details body. statusCode is recorded
// on the result; when it is 0 the body's "status" member is used instead.
func ParseProblemDetails(statusCode int, data []byte) (*ProblemDetails, error) {
	problem := &ProblemDetails{}

	err := json.Unmarshal(data, problem)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal problem details: %w", err)
	}

	problem.StatusCode = statusCode
	if status, ok := problem.Status.Get(); ok && statusCode == 0 {
		problem.StatusCode = status
	}

	return problem, nil
}

// IsEmpty reports whether none of the standard members were present.
func (p *ProblemDetails) IsEmpty() bool {
	return !p.Type.IsSet() && !p.Title.IsSet() && !p.Status.IsSet() && !p.Detail.IsSet() && !p.Instance.IsSet()
}

// StatusError is returned for error statuses whose body is not a problem
// document.
type StatusError struct {
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %d %s", ErrUnexpectedStatus, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap returns ErrUnexpectedStatus.
func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// StatusCode extracts the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	problem := &ProblemDetails{}
	if errors.As(err, &problem) {
		return problem.StatusCode
	}

	statusErr := &StatusError{}
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}

	return 0
}

// IsNotFound checks if the error is a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized checks if the error is a 401 or 403 response.
func IsUnauthorized(err error) bool {
	code := StatusCode(err)

	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// IsRateLimited checks if the error is a 429 response that survived retries.
func IsRateLimited(err error) bool {
	return StatusCode(err) == http.StatusTooManyRequests
}
