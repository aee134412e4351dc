package stocktrim

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/stocktrim-client/internal/constants"
	"github.com/spf13/viper"
)

// Environment holds the STOCKTRIM_* settings found in the process
// environment or a dotenv file. Zero values mean "not provided".
type Environment struct {
	APIAuthID        string
	APIAuthSignature string
	BaseURL          string
	MaxRetries       int
	Timeout          time.Duration
	LogLevel         string
}

// LoadEnvironment reads STOCKTRIM_* variables. When envFile exists it is
// parsed as a dotenv file; variables already set in the process environment
// take precedence over the file. A missing envFile is not an error.
func LoadEnvironment(envFile string) (*Environment, error) {
	v := viper.New()

	keys := []string{
		constants.EnvAuthID,
		constants.EnvAuthSignature,
		constants.EnvBaseURL,
		constants.EnvMaxRetries,
		constants.EnvTimeout,
		constants.EnvLogLevel,
	}
	for _, key := range keys {
		err := v.BindEnv(strings.ToLower(key), key)
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")

			err := v.ReadInConfig()
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", envFile, err)
			}
		}
	}

	env := &Environment{
		APIAuthID:        strings.TrimSpace(v.GetString(strings.ToLower(constants.EnvAuthID))),
		APIAuthSignature: strings.TrimSpace(v.GetString(strings.ToLower(constants.EnvAuthSignature))),
		BaseURL:          strings.TrimSpace(v.GetString(strings.ToLower(constants.EnvBaseURL))),
		LogLevel:         strings.TrimSpace(v.GetString(strings.ToLower(constants.EnvLogLevel))),
	}

	if raw := strings.TrimSpace(v.GetString(strings.ToLower(constants.EnvMaxRetries))); raw != "" {
		retries, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &ConfigError{Field: constants.EnvMaxRetries, Err: err}
		}

		env.MaxRetries = retries
	}

	if raw := strings.TrimSpace(v.GetString(strings.ToLower(constants.EnvTimeout))); raw != "" {
		timeout, err := parseTimeout(raw)
		if err != nil {
			return nil, &ConfigError{Field: constants.EnvTimeout, Err: err}
		}

		env.Timeout = timeout
	}

	return env, nil
}

// parseTimeout accepts plain seconds ("30", "2.5") or a Go duration ("45s").
func parseTimeout(raw string) (time.Duration, error) {
	if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(seconds * float64(time.Second)), nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing timeout %q: %w", raw, err)
	}

	return d, nil
}
