//go:build integration

package integration

import (
	"os"
	"time"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	BaseURL       string
	AuthID        string
	AuthSignature string
	Verbose       bool
	Timeout       time.Duration
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		BaseURL:       os.Getenv("STOCKTRIM_BASE_URL"),
		AuthID:        os.Getenv("STOCKTRIM_API_AUTH_ID"),
		AuthSignature: os.Getenv("STOCKTRIM_API_AUTH_SIGNATURE"),
		Verbose:       os.Getenv("STOCKTRIM_VERBOSE") == "true",
		Timeout:       time.Minute,
	}
}

// HasCredentials reports whether a live tenant is configured.
func (c *TestConfig) HasCredentials() bool {
	return c.AuthID != "" && c.AuthSignature != ""
}
