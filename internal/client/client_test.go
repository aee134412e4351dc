package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fivetwenty-io/stocktrim-client/internal/client"
	"github.com/fivetwenty-io/stocktrim-client/pkg/stocktrim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate blanks STOCKTRIM_* variables and returns a dotenv path that does
// not exist, so only the test's own settings apply.
func isolate(t *testing.T) string {
	t.Helper()

	for _, name := range []string{
		"STOCKTRIM_API_AUTH_ID",
		"STOCKTRIM_API_AUTH_SIGNATURE",
		"STOCKTRIM_BASE_URL",
		"STOCKTRIM_MAX_RETRIES",
		"STOCKTRIM_TIMEOUT",
		"STOCKTRIM_LOG_LEVEL",
	} {
		t.Setenv(name, "")
	}

	return filepath.Join(t.TempDir(), "absent.env")
}

// countingTransport records how many requests reached the network layer.
type countingTransport struct {
	calls int32
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(&c.calls, 1)

	return http.DefaultTransport.RoundTrip(req)
}

func testConfig(t *testing.T, baseURL string) *stocktrim.Config {
	t.Helper()

	return &stocktrim.Config{
		BaseURL:          baseURL,
		APIAuthID:        "tenant-id",
		APIAuthSignature: "tenant-signature",
		EnvFile:          isolate(t),
		MaxRetries:       3,
		RetryWaitMin:     time.Millisecond,
		RetryWaitMax:     5 * time.Millisecond,
	}
}

func TestNew_Credentials(t *testing.T) {
	t.Run("missing id fails before any request", func(t *testing.T) {
		transport := &countingTransport{}

		_, err := client.New(&stocktrim.Config{
			APIAuthSignature: "signature",
			EnvFile:          isolate(t),
			Transport:        transport,
		})

		configErr := &stocktrim.ConfigError{}
		require.ErrorAs(t, err, &configErr)
		require.ErrorIs(t, err, stocktrim.ErrMissingCredentials)
		assert.Equal(t, "APIAuthID", configErr.Field)
		assert.Contains(t, err.Error(), "STOCKTRIM_API_AUTH_ID")
		assert.Zero(t, atomic.LoadInt32(&transport.calls))
	})

	t.Run("missing signature", func(t *testing.T) {
		_, err := client.New(&stocktrim.Config{APIAuthID: "tenant", EnvFile: isolate(t)})

		configErr := &stocktrim.ConfigError{}
		require.ErrorAs(t, err, &configErr)
		assert.Equal(t, "APIAuthSignature", configErr.Field)
	})

	t.Run("nil config reads the environment", func(t *testing.T) {
		isolate(t)
		t.Setenv("STOCKTRIM_API_AUTH_ID", "env-tenant")
		t.Setenv("STOCKTRIM_API_AUTH_SIGNATURE", "env-signature")
		t.Setenv("STOCKTRIM_MAX_RETRIES", "2")

		c, err := client.New(nil)
		require.NoError(t, err)

		assert.Equal(t, "https://api.stocktrim.com", c.BaseURL())
		assert.Equal(t, 2, c.MaxRetries())
	})

	t.Run("explicit values win over the environment", func(t *testing.T) {
		var (
			mu      sync.Mutex
			gotID   string
			gotSign string
		)

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			mu.Lock()
			gotID = request.Header.Get("api-auth-id")
			gotSign = request.Header.Get("api-auth-signature")
			mu.Unlock()
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		config := testConfig(t, server.URL)
		t.Setenv("STOCKTRIM_API_AUTH_ID", "env-tenant")

		c, err := client.New(config)
		require.NoError(t, err)

		defer func() { _ = c.Close() }()

		_, err = c.Get(context.Background(), "/api/Products", nil)
		require.NoError(t, err)

		mu.Lock()
		defer mu.Unlock()

		assert.Equal(t, "tenant-id", gotID)
		assert.Equal(t, "tenant-signature", gotSign)
	})
}

func TestNew_Validation(t *testing.T) {
	t.Run("invalid base url", func(t *testing.T) {
		for _, baseURL := range []string{"api.stocktrim.com", "ftp://api.stocktrim.com", "https://"} {
			config := testConfig(t, baseURL)

			_, err := client.New(config)
			require.ErrorIs(t, err, stocktrim.ErrInvalidBaseURL, baseURL)
		}
	})

	t.Run("retry windows", func(t *testing.T) {
		config := testConfig(t, "https://api.test")
		config.RetryWaitMin = time.Minute
		config.RetryWaitMax = time.Second

		_, err := client.New(config)
		require.ErrorIs(t, err, stocktrim.ErrInvalidRetryWindows)
	})

	t.Run("defaults", func(t *testing.T) {
		c, err := client.New(&stocktrim.Config{APIAuthID: "a", APIAuthSignature: "b", EnvFile: isolate(t)})
		require.NoError(t, err)

		assert.Equal(t, "https://api.stocktrim.com", c.BaseURL())
		assert.Equal(t, 5, c.MaxRetries())
		assert.Equal(t, 30*time.Second, c.Timeout())
	})

	t.Run("negative retries disable retrying", func(t *testing.T) {
		config := testConfig(t, "https://api.test")
		config.MaxRetries = -1

		c, err := client.New(config)
		require.NoError(t, err)
		assert.Equal(t, 0, c.MaxRetries())
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Requests(t *testing.T) {
	t.Run("retries through the full chain", func(t *testing.T) {
		var calls int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				writer.WriteHeader(http.StatusServiceUnavailable)

				return
			}

			_, _ = writer.Write([]byte(`[{"productCode":"WIDGET"}]`))
		}))
		defer server.Close()

		c, err := client.New(testConfig(t, server.URL))
		require.NoError(t, err)

		defer func() { _ = c.Close() }()

		resp, err := c.Get(context.Background(), "/api/Products", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `[{"productCode":"WIDGET"}]`, string(resp.Body))
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("exhausted retries surface the last response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusInternalServerError)
			_, _ = writer.Write([]byte(`{"title":"Internal Server Error","status":500}`))
		}))
		defer server.Close()

		config := testConfig(t, server.URL)
		config.MaxRetries = 1

		c, err := client.New(config)
		require.NoError(t, err)

		defer func() { _ = c.Close() }()

		httpClient, err := c.HTTPClient()
		require.NoError(t, err)

		raw, err := httpClient.Get(server.URL + "/api/Products")
		require.NoError(t, err)
		_ = raw.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, raw.StatusCode)

		resp, err := c.Get(context.Background(), "/api/Products", nil)
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, http.StatusInternalServerError, stocktrim.StatusCode(err))
	})

	t.Run("redirects are not followed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			http.Redirect(writer, request, "https://elsewhere.test/", http.StatusFound)
		}))
		defer server.Close()

		c, err := client.New(testConfig(t, server.URL))
		require.NoError(t, err)

		defer func() { _ = c.Close() }()

		resp, err := c.Get(context.Background(), "/api/Products", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
	})

	t.Run("shares one pool across concurrent calls", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		config := testConfig(t, server.URL)
		config.RequestsPerSecond = 1000

		c, err := client.New(config)
		require.NoError(t, err)

		defer func() { _ = c.Close() }()

		first, err := c.HTTPClient()
		require.NoError(t, err)

		var wg sync.WaitGroup

		for range 10 {
			wg.Add(1)

			go func() {
				defer wg.Done()

				resp, err := c.Get(context.Background(), "/api/Products", nil)
				assert.NoError(t, err)

				if resp != nil {
					assert.Equal(t, http.StatusOK, resp.StatusCode)
				}
			}()
		}

		wg.Wait()

		second, err := c.HTTPClient()
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("custom transport sits at the bottom of the chain", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		transport := &countingTransport{}
		config := testConfig(t, server.URL)
		config.Transport = transport

		c, err := client.New(config)
		require.NoError(t, err)

		_, err = c.Delete(context.Background(), "/api/Products", nil)
		require.NoError(t, err)
		require.NoError(t, c.Close())

		assert.Equal(t, int32(1), atomic.LoadInt32(&transport.calls))
	})
}

func TestClient_Close(t *testing.T) {
	t.Run("never used client", func(t *testing.T) {
		c, err := client.New(testConfig(t, "https://api.test"))
		require.NoError(t, err)

		require.NoError(t, c.Close())
		require.NoError(t, c.Close())
	})

	t.Run("requests after close fail", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		c, err := client.New(testConfig(t, server.URL))
		require.NoError(t, err)

		_, err = c.Get(context.Background(), "/api/Products", nil)
		require.NoError(t, err)

		require.NoError(t, c.Close())
		require.NoError(t, c.Close())

		_, err = c.Get(context.Background(), "/api/Products", nil)
		require.ErrorIs(t, err, stocktrim.ErrClientClosed)

		_, err = c.HTTPClient()
		require.ErrorIs(t, err, stocktrim.ErrClientClosed)
	})
}

func TestClient_String(t *testing.T) {
	c, err := client.New(testConfig(t, "https://api.test"))
	require.NoError(t, err)

	assert.Equal(t, `StockTrimClient(base_url="https://api.test", max_retries=3)`, c.String())
	assert.NotContains(t, c.String(), "tenant")
}
