// Package http implements the StockTrim transport chain and a small request
// helper on top of it.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/stocktrim-client/internal/constants"
	"github.com/fivetwenty-io/stocktrim-client/pkg/stocktrim"
)

// Client sends stocktrim.Request values through an *http.Client whose
// transport chain handles authentication, retries, and logging.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient creates a request helper for baseURL.
func NewClient(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		userAgent:  constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do sends req and reads the whole response. For status codes of 400 and
// above the response is returned together with a *stocktrim.ProblemDetails
// error, or a *stocktrim.StatusError when the body is not a problem document.
func (c *Client) Do(ctx context.Context, req *stocktrim.Request) (*stocktrim.Response, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing %s %s: %w", req.Method, req.Path, err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &stocktrim.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return resp, decodeError(resp)
	}

	return resp, nil
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

// Delete sends a DELETE request. StockTrim selects what to delete through
// query parameters.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) (*stocktrim.Response, error) {
	return c.Do(ctx, &stocktrim.Request{Method: http.MethodDelete, Path: path, Query: query})
}

func (c *Client) newRequest(ctx context.Context, req *stocktrim.Request) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimPrefix(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader

	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", constants.ErrRequestBody, err)
		}

		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}

func decodeError(resp *stocktrim.Response) error {
	problem, err := stocktrim.ParseProblemDetails(resp.StatusCode, resp.Body)
	if err == nil && !problem.IsEmpty() {
		return problem
	}

	return &stocktrim.StatusError{StatusCode: resp.StatusCode, Body: resp.Body}
}
