package commands

import (
	"github.com/fivetwenty-io/stocktrim-client/internal/constants"
	"github.com/fivetwenty-io/stocktrim-client/pkg/stocktrim"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EffectiveConfig is the configuration a client would be built with.
// Credentials are masked.
type EffectiveConfig struct {
	BaseURL          string  `json:"base_url" yaml:"base_url"`
	APIAuthID        string  `json:"api_auth_id" yaml:"api_auth_id"`
	APIAuthSignature string  `json:"api_auth_signature" yaml:"api_auth_signature"`
	EnvFile          string  `json:"env_file" yaml:"env_file"`
	Timeout          string  `json:"timeout" yaml:"timeout"`
	MaxRetries       int     `json:"max_retries" yaml:"max_retries"`
	RateLimit        float64 `json:"rate_limit" yaml:"rate_limit"`
	LogLevel         string  `json:"log_level" yaml:"log_level"`
}

// NewConfigCommand creates the config command group
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect CLI configuration",
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long:  "Show the configuration resolved from flags, STOCKTRIM_* environment variables, the .env file and defaults. Credentials are masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			effective, err := resolveEffectiveConfig()
			if err != nil {
				return err
			}

			return printValue(cmd.OutOrStdout(), format, toMap(effective))
		},
	}
}

func resolveEffectiveConfig() (*EffectiveConfig, error) {
	envFile := firstNonEmpty(viper.GetString(KeyEnvFile), constants.DefaultEnvFile)

	env, err := stocktrim.LoadEnvironment(envFile)
	if err != nil {
		return nil, err
	}

	timeout := viper.GetDuration(KeyTimeout)
	if timeout <= 0 {
		timeout = env.Timeout
	}

	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	retries := viper.GetInt(KeyMaxRetries)
	if retries == 0 {
		retries = env.MaxRetries
	}

	if retries == 0 {
		retries = constants.DefaultRetryMax
	}

	return &EffectiveConfig{
		BaseURL:          firstNonEmpty(viper.GetString(KeyBaseURL), env.BaseURL, constants.DefaultBaseURL),
		APIAuthID:        maskSecret(firstNonEmpty(viper.GetString(KeyAuthID), env.APIAuthID)),
		APIAuthSignature: maskSecret(firstNonEmpty(viper.GetString(KeyAuthSignature), env.APIAuthSignature)),
		EnvFile:          envFile,
		Timeout:          timeout.String(),
		MaxRetries:       max(retries, 0),
		RateLimit:        viper.GetFloat64(KeyRateLimit),
		LogLevel:         firstNonEmpty(viper.GetString(KeyLogLevel), env.LogLevel, "warn"),
	}, nil
}

// toMap flattens config so table output renders it as property rows.
func toMap(config *EffectiveConfig) map[string]interface{} {
	return map[string]interface{}{
		"base_url":           config.BaseURL,
		"api_auth_id":        config.APIAuthID,
		"api_auth_signature": config.APIAuthSignature,
		"env_file":           config.EnvFile,
		"timeout":            config.Timeout,
		"max_retries":        config.MaxRetries,
		"rate_limit":         config.RateLimit,
		"log_level":          config.LogLevel,
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}

	return ""
}
