// Package report handles the report command
package report

import (
	"fmt"
	"os"
	"strings"

	"fjacquet/divledger/cmd/root"
	"fjacquet/divledger/internal/models"
	reportgen "fjacquet/divledger/internal/report"
	"fjacquet/divledger/internal/validation"

	"github.com/spf13/cobra"
)

// Cmd represents the report command
var Cmd = NewCommand()

// NewCommand builds the report command.
func NewCommand() *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export financials and the per-division summary",
		Long: `Export the aggregate financials and the per-division summary as JSON or
YAML, or the per-division summary alone as CSV.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer(cmd)
			if err != nil {
				return err
			}
			if output != "" {
				if err := validation.IsValidOutputPath(output); err != nil {
					return err
				}
			}
			report := c.GetLedger().Report()
			data, err := c.GetReportGenerator().GenerateReport(&report, format)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, models.PermissionDataFile); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", reportgen.FormatJSON,
		"Output format ("+strings.Join(reportgen.Formats, ", ")+")")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}
