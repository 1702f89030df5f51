// Package transaction handles the transaction commands
package transaction

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"fjacquet/divledger/cmd/root"
	"fjacquet/divledger/internal/ledger"
	"fjacquet/divledger/internal/ledgererror"
	"fjacquet/divledger/internal/models"
	"fjacquet/divledger/internal/validation"

	"github.com/spf13/cobra"
)

// Cmd represents the transaction command
var Cmd = NewCommand()

// NewCommand builds the transaction command tree.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transaction",
		Aliases: []string{"tx"},
		Short:   "Record, edit and list transactions",
	}
	cmd.AddCommand(newAddCmd(), newUpdateCmd(), newDeleteCmd(), newListCmd())
	return cmd
}

// entryFlags are the editable fields shared by add and update.
type entryFlags struct {
	name        string
	class       string
	division    string
	typ         string
	amount      string
	description string
	receipt     string
	latitude    string
	longitude   string
}

func (f *entryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "Submitter name")
	cmd.Flags().StringVar(&f.class, "class", "", "Class label")
	cmd.Flags().StringVar(&f.division, "division", "", "Division name")
	cmd.Flags().StringVarP(&f.typ, "type", "t", "", "Transaction type (credit or debit)")
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "Amount")
	cmd.Flags().StringVar(&f.description, "description", "", "Description")
	cmd.Flags().StringVar(&f.receipt, "receipt", "", "Receipt file to copy into the receipts folder")
	cmd.Flags().StringVar(&f.latitude, "lat", "", "Latitude")
	cmd.Flags().StringVar(&f.longitude, "long", "", "Longitude")
}

// storeReceipt copies a local receipt file into the receipt store.
func storeReceipt(cmd *cobra.Command, path string) (string, error) {
	c, err := root.GetContainer(cmd)
	if err != nil {
		return "", err
	}
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open receipt: %w", err)
	}
	defer file.Close()
	return c.GetReceipts().Save(filepath.Base(path), file)
}

func newAddCmd() *cobra.Command {
	var f entryFlags
	var validate bool
	var location string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a credit or debit against a division",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer(cmd)
			if err != nil {
				return err
			}
			typ, err := models.ParseTransactionType(f.typ)
			if err != nil {
				return err
			}
			amount, err := models.ParseAmount(f.amount)
			if err != nil {
				return err
			}

			in := ledger.TransactionInput{
				Name:            f.name,
				ClassLabel:      f.class,
				Division:        f.division,
				Type:            typ,
				Amount:          amount,
				Description:     f.description,
				ValidateBalance: validate,
				Latitude:        f.latitude,
				Longitude:       f.longitude,
			}
			if location != "" && in.Latitude == "" && in.Longitude == "" {
				lat, long, ok := validation.SplitLocation(location)
				if !ok {
					return fmt.Errorf("invalid location %q (want \"lat,long\")", location)
				}
				in.Latitude, in.Longitude = lat, long
			}
			if f.receipt != "" {
				if in.ReceiptPath, err = storeReceipt(cmd, f.receipt); err != nil {
					return err
				}
			}

			id, err := c.GetLedger().AddTransaction(in)
			if err != nil {
				if in.ReceiptPath != "" {
					_ = c.GetReceipts().Remove(in.ReceiptPath)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&validate, "validate", true, "Refuse a debit larger than the division balance")
	cmd.Flags().StringVar(&location, "location", "", "Coordinates as \"lat,long\" (alternative to --lat/--long)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("division")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var f entryFlags
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Edit a transaction; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer(cmd)
			if err != nil {
				return err
			}
			l := c.GetLedger()
			current, err := l.Transaction(args[0])
			if err != nil {
				return err
			}

			upd := ledger.TransactionUpdate{
				Name:        current.Name,
				ClassLabel:  current.ClassLabel,
				Division:    current.Division,
				Type:        current.Type,
				Amount:      current.Amount,
				Description: current.Description,
			}
			changed := cmd.Flags().Changed
			if changed("name") {
				upd.Name = f.name
			}
			if changed("class") {
				upd.ClassLabel = f.class
			}
			if changed("division") {
				upd.Division = f.division
			}
			if changed("type") {
				if upd.Type, err = models.ParseTransactionType(f.typ); err != nil {
					return err
				}
			}
			if changed("amount") {
				if upd.Amount, err = models.ParseAmount(f.amount); err != nil {
					return err
				}
			}
			if changed("description") {
				upd.Description = f.description
			}
			if changed("receipt") {
				path, err := storeReceipt(cmd, f.receipt)
				if err != nil {
					return err
				}
				upd.ReceiptPath = &path
			}
			if changed("lat") {
				upd.Latitude = &f.latitude
			}
			if changed("long") {
				upd.Longitude = &f.longitude
			}

			if err := l.UpdateTransaction(args[0], upd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transaction %s updated\n", args[0])
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer(cmd)
			if err != nil {
				return err
			}
			removed, err := c.GetLedger().DeleteTransaction(args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("transaction %s: %w", args[0], ledgererror.ErrRecordNotFound)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transaction %s deleted\n", args[0])
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	var (
		typ       string
		division  string
		name      string
		sortBy    string
		ascending bool
		limit     int
		located   bool
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions with optional filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer(cmd)
			if err != nil {
				return err
			}
			filter := ledger.Filter{Division: division, Name: name, SortBy: sortBy, Ascending: ascending}
			if typ != "" {
				if filter.Type, err = models.ParseTransactionType(typ); err != nil {
					return err
				}
			}
			if !ledger.ValidSortKey(sortBy) {
				return fmt.Errorf("unknown sort key %q (want datetime, amount, name or division)", sortBy)
			}

			txs := c.GetLedger().Transactions()
			if located {
				txs = ledger.LocatedTransactions(txs)
			}
			txs = ledger.FilterTransactions(txs, filter)
			if limit > 0 && len(txs) > limit {
				txs = txs[:limit]
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(txs)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATETIME\tNAME\tCLASS\tDIVISION\tTYPE\tAMOUNT\tDESCRIPTION")
			for _, tx := range txs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", tx.ID, tx.Timestamp, tx.Name,
					tx.ClassLabel, tx.Division, tx.Type, tx.Amount.StringFixed(2), tx.Description)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "Only credit or debit")
	cmd.Flags().StringVar(&division, "division", "", "Only this division")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Submitter name contains")
	cmd.Flags().StringVar(&sortBy, "sort", models.SortByDatetime, "Sort by datetime, amount, name or division")
	cmd.Flags().BoolVar(&ascending, "asc", false, "Sort ascending")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many transactions (0 = all)")
	cmd.Flags().BoolVar(&located, "located", false, "Only transactions with coordinates")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
