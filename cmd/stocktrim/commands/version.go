package commands

import (
	"fmt"
	"runtime"

	"github.com/fivetwenty-io/stocktrim-client/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the StockTrim CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			if format != constants.FormatTable {
				return printValue(cmd.OutOrStdout(), format, map[string]interface{}{
					"version": version,
					"commit":  commit,
					"built":   date,
					"go":      runtime.Version(),
				})
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Property", "Value")
			_ = table.Append("Version", version)
			_ = table.Append("Commit", commit)
			_ = table.Append("Built", date)
			_ = table.Append("Go", runtime.Version())

			if err := table.Render(); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}
}
