package main

import (
	"fmt"
	"os"

	"github.com/fivetwenty-io/stocktrim-client/cmd/stocktrim/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "stocktrim",
	Short: "StockTrim API CLI",
	Long: `A command-line interface for the StockTrim inventory planning API.

Requests go through the same authenticated, retrying transport as the Go
client. Credentials are read from flags, STOCKTRIM_API_AUTH_ID and
STOCKTRIM_API_AUTH_SIGNATURE, or a .env file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()

	// Global flags
	flags.String("base-url", "", "API base URL (default https://api.stocktrim.com)")
	flags.String("auth-id", "", "API auth id")
	flags.String("auth-signature", "", "API auth signature")
	flags.Bool("prompt-signature", false, "prompt for the API auth signature")
	flags.String("env-file", ".env", "dotenv file with STOCKTRIM_* variables")
	flags.Duration("timeout", 0, "per-attempt timeout (default 30s)")
	flags.Int("max-retries", 0, "retries after the first attempt (default 5, negative disables)")
	flags.Float64("rate-limit", 0, "maximum attempts per second (0 disables)")
	flags.StringP("output", "o", "json", "output format (json, yaml, table)")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flags.Bool("no-color", false, "disable colored output")

	// Bind flags to viper
	bindings := map[string]string{
		commands.KeyBaseURL:       "base-url",
		commands.KeyAuthID:        "auth-id",
		commands.KeyAuthSignature: "auth-signature",
		commands.KeyPrompt:        "prompt-signature",
		commands.KeyEnvFile:       "env-file",
		commands.KeyTimeout:       "timeout",
		commands.KeyMaxRetries:    "max-retries",
		commands.KeyRateLimit:     "rate-limit",
		commands.KeyOutput:        "output",
		commands.KeyLogLevel:      "log-level",
		commands.KeyNoColor:       "no-color",
	}
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewRequestCommand())
	rootCmd.AddCommand(commands.NewGetCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
