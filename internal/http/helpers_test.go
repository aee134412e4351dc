package http_test

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	stocktrimhttp "github.com/fivetwenty-io/stocktrim-client/internal/http"
	"github.com/fivetwenty-io/stocktrim-client/pkg/stocktrim"
)

type logRecord struct {
	level  stocktrim.Level
	msg    string
	fields map[string]interface{}
}

// recordingLogger keeps every record at or above its level.
type recordingLogger struct {
	mu      sync.Mutex
	level   stocktrim.Level
	records []logRecord
}

func newRecordingLogger(level stocktrim.Level) *recordingLogger {
	return &recordingLogger{level: level}
}

func (l *recordingLogger) add(level stocktrim.Level, msg string, fields map[string]interface{}) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, logRecord{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) Trace(msg string, fields map[string]interface{}) {
	l.add(stocktrim.LevelTrace, msg, fields)
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {
	l.add(stocktrim.LevelDebug, msg, fields)
}

func (l *recordingLogger) Info(msg string, fields map[string]interface{}) {
	l.add(stocktrim.LevelInfo, msg, fields)
}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.add(stocktrim.LevelWarn, msg, fields)
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.add(stocktrim.LevelError, msg, fields)
}

func (l *recordingLogger) Enabled(level stocktrim.Level) bool {
	return level >= l.level
}

func (l *recordingLogger) at(level stocktrim.Level) []logRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []logRecord

	for _, record := range l.records {
		if record.level == level {
			out = append(out, record)
		}
	}

	return out
}

func (l *recordingLogger) messages(level stocktrim.Level) []string {
	var out []string
	for _, record := range l.at(level) {
		out = append(out, record.msg)
	}

	return out
}

// dump renders every record, fields included, for substring checks.
func (l *recordingLogger) dump() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	for _, record := range l.records {
		fmt.Fprintf(&b, "%s %s %v\n", record.level, record.msg, record.fields)
	}

	return b.String()
}

// panicLogger fails on every call.
type panicLogger struct{}

func (panicLogger) Trace(string, map[string]interface{}) { panic("trace") }
func (panicLogger) Debug(string, map[string]interface{}) { panic("debug") }
func (panicLogger) Info(string, map[string]interface{})  { panic("info") }
func (panicLogger) Warn(string, map[string]interface{})  { panic("warn") }
func (panicLogger) Error(string, map[string]interface{}) { panic("error") }
func (panicLogger) Enabled(stocktrim.Level) bool         { return true }

// step is one scripted outcome of scriptedTransport.
type step struct {
	status int
	body   string
	header http.Header
	reader io.Reader
	err    error
}

// scriptedTransport replays steps in order, repeating the last one, and
// records the headers of every request it receives.
type scriptedTransport struct {
	mu      sync.Mutex
	steps   []step
	headers []http.Header
}

func newScriptedTransport(steps ...step) *scriptedTransport {
	return &scriptedTransport{steps: steps}
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.headers = append(s.headers, req.Header.Clone())
	current := s.steps[min(len(s.headers), len(s.steps))-1]
	s.mu.Unlock()

	if req.Body != nil {
		_, _ = io.Copy(io.Discard, req.Body)
		_ = req.Body.Close()
	}

	if current.err != nil {
		return nil, current.err
	}

	header := current.header
	if header == nil {
		header = http.Header{"Content-Type": []string{"application/json"}}
	}

	body := current.reader
	if body == nil {
		body = strings.NewReader(current.body)
	}

	return &http.Response{
		StatusCode: current.status,
		Status:     fmt.Sprintf("%d %s", current.status, http.StatusText(current.status)),
		Header:     header,
		Body:       io.NopCloser(body),
		Request:    req,
	}, nil
}

func (s *scriptedTransport) attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.headers)
}

func (s *scriptedTransport) lastHeader() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.headers) == 0 {
		return nil
	}

	return s.headers[len(s.headers)-1]
}

// errReader returns data and then err.
type errReader struct {
	data []byte
	err  error
}

func (r *errReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}

	n := copy(p, r.data)
	r.data = r.data[n:]

	return n, nil
}

func fastPolicy(maxRetries int) stocktrimhttp.RetryPolicy {
	return stocktrimhttp.RetryPolicy{
		MaxRetries:   maxRetries,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
		Timeout:      5 * time.Second,
	}
}

var testCredentials = stocktrimhttp.Credentials{
	AuthID:        "tenant-id-123",
	AuthSignature: "signature-secret-456",
}
