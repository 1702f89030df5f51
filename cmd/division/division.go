// Package division handles the division management commands
package division

import (
	"fmt"
	"text/tabwriter"

	"fjacquet/divledger/cmd/root"
	"fjacquet/divledger/internal/ledgererror"
	"fjacquet/divledger/internal/models"

	"github.com/spf13/cobra"
)

// Cmd represents the division command
var Cmd = NewCommand()

// NewCommand builds the division command tree.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "division",
		Short: "Manage divisions and inspect their balances",
	}
	cmd.AddCommand(newAddCmd(), newUpdateCmd(), newDeleteCmd(), newListCmd(), newBalanceCmd(), newStatsCmd())
	return cmd
}

func newAddCmd() *cobra.Command {
	var balance string
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a division with a starting balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer(cmd)
			if err != nil {
				return err
			}
			amount, err := models.ParseAmount(balance)
			if err != nil {
				return err
			}
			if _, err := c.GetLedger().AddDivision(args[0], amount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Division %q created with %s\n", args[0], models.FormatCurrency(amount))
			return nil
		},
	}
	cmd.Flags().StringVarP(&balance, "balance", "b", "0", "Starting balance")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var balance string
	cmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Replace a division's starting balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer(cmd)
			if err != nil {
				return err
			}
			amount, err := models.ParseAmount(balance)
			if err != nil {
				return err
			}
			if _, err := c.GetLedger().UpdateDivision(args[0], amount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Division %q starting balance set to %s\n", args[0], models.FormatCurrency(amount))
			return nil
		},
	}
	cmd.Flags().StringVarP(&balance, "balance", "b", "", "New starting balance")
	_ = cmd.MarkFlagRequired("balance")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a division; its transactions are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer(cmd)
			if err != nil {
				return err
			}
			removed, err := c.GetLedger().DeleteDivision(args[0])
			if err != nil {
				return err
			}
			if !removed {
				return &ledgererror.DivisionNotFoundError{Division: args[0]}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Division %q deleted\n", args[0])
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List divisions with their current figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer(cmd)
			if err != nil {
				return err
			}
			rows := c.GetLedger().Summary()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "DIVISION\tSTARTING\tCREDITS\tSPENT\tREMAINING\t")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", r.Division,
					r.StartingBalance.StringFixed(2), r.CreditsAdded.StringFixed(2),
					r.TotalSpent.StringFixed(2), r.RemainingBalance.StringFixed(2))
			}
			return w.Flush()
		},
	}
}

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance NAME",
		Short: "Show the current balance of a division",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer(cmd)
			if err != nil {
				return err
			}
			balance, err := c.GetLedger().Balance(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], models.FormatCurrency(balance))
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats NAME",
		Short: "Show the figures and activity of a division",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer(cmd)
			if err != nil {
				return err
			}
			s, err := c.GetLedger().Stats(args[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Division:\t%s\n", s.Division)
			fmt.Fprintf(w, "Starting balance:\t%s\n", models.FormatCurrency(s.StartingBalance))
			fmt.Fprintf(w, "Credits added:\t%s\n", models.FormatCurrency(s.CreditsAdded))
			fmt.Fprintf(w, "Total spent:\t%s\n", models.FormatCurrency(s.TotalSpent))
			fmt.Fprintf(w, "Remaining balance:\t%s\n", models.FormatCurrency(s.RemainingBalance))
			fmt.Fprintf(w, "Transactions:\t%d\n", s.TransactionCount)
			fmt.Fprintf(w, "Average expense:\t%s\n", models.FormatCurrency(s.AvgExpense))
			return w.Flush()
		},
	}
}
