package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/decors/pkg/types"
)

func newSaleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sale <id>",
		Short: "Record the sale of one unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return adjustStock(cmd, a, args[0], -1)
		},
	}
}

func newRestockCmd(a *app) *cobra.Command {
	var by int
	cmd := &cobra.Command{
		Use:   "restock <id>",
		Short: "Add units to the stock of a decor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if by <= 0 {
				return usageError{errors.New("--by must be positive")}
			}
			return adjustStock(cmd, a, args[0], by)
		},
	}
	cmd.Flags().IntVar(&by, "by", 1, "units to add")
	return cmd
}

func newReduceCmd(a *app) *cobra.Command {
	var by int
	cmd := &cobra.Command{
		Use:   "reduce <id>",
		Short: "Remove units from the stock of a decor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if by <= 0 {
				return usageError{errors.New("--by must be positive")}
			}
			return adjustStock(cmd, a, args[0], -by)
		},
	}
	cmd.Flags().IntVar(&by, "by", 1, "units to remove")
	return cmd
}

// adjustStock applies delta to the quantity of the decor named by arg and
// prints its new stock level.
func adjustStock(cmd *cobra.Command, a *app, arg string, delta int) error {
	if !isItem(arg) {
		return usageError{fmt.Errorf("%q is not a decor id", arg)}
	}
	s, err := a.open()
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	locator := locatorArg(arg)
	n, err := s.provider.AdjustQuantity(ctx, locator, types.Selection{}, delta)
	if err != nil {
		return err
	}
	if n == 0 {
		return reportAffected(cmd, a, arg, n, "")
	}

	d, err := s.provider.Get(ctx, locator)
	if err != nil {
		return err
	}
	if a.jsonMode {
		return printJSON(cmd.OutOrStdout(), map[string]any{"id": d.ID, "quantity": d.Quantity})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d in stock\n", d.Name, d.Quantity)
	return nil
}
