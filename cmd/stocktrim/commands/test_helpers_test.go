package commands_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/fivetwenty-io/stocktrim-client/cmd/stocktrim/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// setupViper isolates the command from the process environment and resets
// viper when the test ends.
func setupViper(t *testing.T, values map[string]interface{}) {
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

	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set(commands.KeyEnvFile, filepath.Join(t.TempDir(), "absent.env"))
	viper.Set(commands.KeyNoColor, true)
	viper.Set(commands.KeyLogLevel, "error")

	for key, value := range values {
		viper.Set(key, value)
	}
}

// execute runs cmd with args and returns stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}
