package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fivetwenty-io/stocktrim-client/internal/constants"
	"github.com/fivetwenty-io/stocktrim-client/pkg/stocktrim"
	"github.com/google/uuid"
)

// sensitiveHeaders are masked whenever request headers are logged.
var sensitiveHeaders = []string{
	constants.HeaderAuthID,
	constants.HeaderAuthSignature,
	"Authorization",
	"Proxy-Authorization",
	"Cookie",
}

// LoggingTransport logs every call made through next: a summary line for
// successes, response excerpts at debug and trace level, and the error body
// for 4xx and 5xx responses. It never alters or retries a call.
type LoggingTransport struct {
	next   http.RoundTripper
	logger stocktrim.Logger
}

var _ http.RoundTripper = (*LoggingTransport)(nil)

// NewLoggingTransport creates a LoggingTransport around next.
func NewLoggingTransport(next http.RoundTripper, logger stocktrim.Logger) *LoggingTransport {
	if logger == nil {
		logger = stocktrim.NopLogger{}
	}

	return &LoggingTransport{next: next, logger: logger}
}

// RoundTrip implements http.RoundTripper.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	call := &loggedCall{
		method:    req.Method,
		url:       req.URL.Redacted(),
		requestID: req.Header.Get(constants.HeaderRequestID),
	}
	if call.requestID == "" {
		call.requestID = uuid.NewString()
	}

	t.safely(func() { t.logRequest(req, call) })

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	call.elapsed = time.Since(start)

	if err != nil {
		t.safely(func() { t.logFailure(call, err) })

		return nil, err
	}

	call.status = resp.StatusCode

	t.safely(func() {
		switch {
		case resp.StatusCode >= 500:
			t.logServerError(resp, call)
		case resp.StatusCode >= 400:
			t.logClientError(resp, call)
		default:
			t.logSuccess(resp, call)
		}
	})

	return resp, nil
}

type loggedCall struct {
	method    string
	url       string
	requestID string
	status    int
	elapsed   time.Duration
}

func (c *loggedCall) millis() int64 {
	return c.elapsed.Milliseconds()
}

func (c *loggedCall) fields() map[string]interface{} {
	fields := map[string]interface{}{
		"method":     c.method,
		"url":        c.url,
		"request_id": c.requestID,
		"latency_ms": c.millis(),
	}
	if c.status != 0 {
		fields["status_code"] = c.status
	}

	return fields
}

// safely keeps a failing logger from turning into a failed request.
func (t *LoggingTransport) safely(fn func()) {
	defer func() {
		_ = recover()
	}()

	fn()
}

func (t *LoggingTransport) logRequest(req *http.Request, call *loggedCall) {
	if !t.logger.Enabled(stocktrim.LevelDebug) {
		return
	}

	t.logger.Debug(fmt.Sprintf("Request: %s %s", call.method, call.url), map[string]interface{}{
		"request_id": call.requestID,
		"headers":    SanitizeHeaders(req.Header),
	})
}

func (t *LoggingTransport) logFailure(call *loggedCall, err error) {
	fields := call.fields()
	fields["error"] = err.Error()

	t.logger.Error(fmt.Sprintf("%s %s failed after %dms", call.method, call.url, call.millis()), fields)
}

func (t *LoggingTransport) logSuccess(resp *http.Response, call *loggedCall) {
	t.logger.Info(fmt.Sprintf("%s %s %d (%dms)", call.method, call.url, call.status, call.millis()), call.fields())

	debug := t.logger.Enabled(stocktrim.LevelDebug)
	trace := t.logger.Enabled(stocktrim.LevelTrace)

	if !debug && !trace {
		return
	}

	body, err := bufferBody(resp)
	if err != nil {
		return
	}

	var parsed interface{}

	parseErr := json.Unmarshal(body, &parsed)

	if debug {
		t.logBodySummary(call, body, parsed, parseErr)
	}

	if trace {
		t.logFullBody(call, body, parsed, parseErr)
	}
}

func (t *LoggingTransport) logBodySummary(call *loggedCall, body []byte, parsed interface{}, parseErr error) {
	fields := map[string]interface{}{"request_id": call.requestID}

	if parseErr != nil {
		excerpt, _ := truncate(string(body), constants.BodyExcerptLength)
		t.logger.Debug("Response body [raw]: "+excerpt, fields)

		return
	}

	switch value := parsed.(type) {
	case nil:
		t.logger.Warn(fmt.Sprintf(
			"%s %s returned a null response body; decoding it into a typed result will fail",
			call.method, call.url,
		), call.fields())
	case []interface{}:
		t.logger.Debug(fmt.Sprintf("Response: list[%d] items", len(value)), fields)
	default:
		compact := &bytes.Buffer{}
		if err := json.Compact(compact, body); err != nil {
			compact.Reset()
			compact.Write(body)
		}

		excerpt, truncated := truncate(compact.String(), constants.BodyExcerptLength)
		if truncated {
			excerpt += "..."
		}

		t.logger.Debug("Response body: "+excerpt, fields)
	}
}

func (t *LoggingTransport) logFullBody(call *loggedCall, body []byte, parsed interface{}, parseErr error) {
	prefix := fmt.Sprintf("Full response body for %s %s %d", call.method, call.url, call.status)
	fields := map[string]interface{}{"request_id": call.requestID}

	if parseErr != nil {
		excerpt, _ := truncate(string(body), constants.RawExcerptLength)
		t.logger.Trace(prefix+" [raw]:\n"+excerpt, fields)

		return
	}

	pretty, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		pretty = body
	}

	t.logger.Trace(prefix+":\n"+string(pretty), fields)
}

func (t *LoggingTransport) logClientError(resp *http.Response, call *loggedCall) {
	fields := call.fields()
	fields["body"] = errorBody(resp)

	t.logger.Error(fmt.Sprintf("Client error %d for %s %s (%dms)", call.status, call.method, call.url, call.millis()), fields)
}

func (t *LoggingTransport) logServerError(resp *http.Response, call *loggedCall) {
	fields := call.fields()
	fields["body"] = errorBody(resp)

	t.logger.Error(fmt.Sprintf("Server error %d for %s %s (%dms)", call.status, call.method, call.url, call.millis()), fields)
}

// errorBody returns the parsed JSON body, or the raw text when it is not JSON.
func errorBody(resp *http.Response) interface{} {
	body, err := bufferBody(resp)
	if err != nil {
		return fmt.Sprintf("<unreadable body: %v>", err)
	}

	var parsed interface{}
	if json.Unmarshal(body, &parsed) == nil {
		return parsed
	}

	text, _ := truncate(string(body), constants.ErrorBodyLength)

	return text
}

// bufferBody reads the response body and puts an equivalent reader back so
// the caller sees the same bytes. A read error is replayed to the caller
// after the bytes that were read.
func bufferBody(resp *http.Response) ([]byte, error) {
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, nil
	}

	original := resp.Body
	data, err := io.ReadAll(original)
	_ = original.Close()

	if err != nil {
		resp.Body = io.NopCloser(io.MultiReader(bytes.NewReader(data), &failingReader{err: err}))

		return nil, err
	}

	resp.Body = io.NopCloser(bytes.NewReader(data))

	return data, nil
}

type failingReader struct {
	err error
}

func (r *failingReader) Read([]byte) (int, error) {
	return 0, r.err
}

// SanitizeHeaders flattens headers for logging with credential values masked.
func SanitizeHeaders(headers http.Header) map[string]string {
	sanitized := make(map[string]string, len(headers))

	for name, values := range headers {
		if isSensitiveHeader(name) {
			sanitized[name] = constants.MaskValue

			continue
		}

		sanitized[name] = strings.Join(values, ", ")
	}

	return sanitized
}

func isSensitiveHeader(name string) bool {
	for _, sensitive := range sensitiveHeaders {
		if strings.EqualFold(name, sensitive) {
			return true
		}
	}

	return false
}

func truncate(s string, limit int) (string, bool) {
	if len(s) <= limit {
		return s, false
	}

	return s[:limit], true
}
