package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/decors/internal/router"
	"github.com/mesh-intelligence/decors/pkg/types"
)

func newAddCmd(a *app) *cobra.Command {
	var f decorFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a decor to the inventory",
		Example: `  decors add --name "Glass Vase" --material glass --height 30 --price 8.50 --quantity 12
  decors add --name Cushion --material fabric --price 0 --quantity 3 --image cushion.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := f.values(cmd)
			if err != nil {
				return err
			}
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.close()

			id, err := s.provider.Insert(cmd.Context(), types.CollectionLocator, values)
			if err != nil {
				return err
			}
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{"id": id, "locator": types.ItemLocator(id)})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added decor %d\n", id)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var (
		material string
		sort     string
		limit    int
		offset   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List decors",
		Example: `  decors list
  decors list --material glass --sort "price desc"
  decors list --json --limit 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var sel types.Selection
			if cmd.Flags().Changed("material") {
				m, err := types.ParseMaterial(material)
				if err != nil {
					return err
				}
				sel = types.Selection{Where: types.ColumnMaterial + " = ?", Args: []any{int(m)}}
			}
			opts := types.QueryOptions{SortOrder: sort, Limit: limit, Offset: offset}

			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.close()

			cur, err := s.provider.Query(cmd.Context(), types.CollectionLocator, sel, opts)
			if err != nil {
				return err
			}
			defer cur.Close()

			decors := []*types.Decor{}
			for d, err := range cur.All() {
				if err != nil {
					return err
				}
				decors = append(decors, d)
			}

			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), decors)
			}
			if len(decors) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No decors")
				return nil
			}
			return printTable(cmd.OutOrStdout(), decors)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&material, "material", "", "only decors of this material")
	fs.StringVar(&sort, "sort", "", "sort order, e.g. \"price desc, name\"")
	fs.IntVar(&limit, "limit", 0, "maximum number of decors")
	fs.IntVar(&offset, "offset", 0, "number of decors to skip")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id|locator>",
		Short: "Show one decor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.close()

			d, err := s.provider.Get(cmd.Context(), locatorArg(args[0]))
			if err != nil {
				if errors.Is(err, types.ErrNotFound) {
					return fmt.Errorf("decor %s: %w", args[0], err)
				}
				return err
			}
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), d)
			}
			printDecor(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	var f decorFlags
	cmd := &cobra.Command{
		Use:   "update <id|locator>",
		Short: "Change fields of a decor",
		Long: `Update writes only the fields given as flags; everything else is left as is.
Passing the collection locator updates every decor.`,
		Example: `  decors update 3 --quantity 4
  decors update 3 --price 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := f.values(cmd)
			if err != nil {
				return err
			}
			if values.IsEmpty() {
				return usageError{errors.New("nothing to update: pass at least one field flag")}
			}
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.close()

			n, err := s.provider.Modify(cmd.Context(), locatorArg(args[0]), values)
			if err != nil {
				return err
			}
			return reportAffected(cmd, a, args[0], n, "Updated")
		},
	}
	f.register(cmd)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "delete [id|locator]",
		Short: "Delete a decor, or every decor with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var locator string
			switch {
			case all && len(args) == 0:
				locator = types.CollectionLocator
			case !all && len(args) == 1:
				locator = locatorArg(args[0])
			default:
				return usageError{errors.New("pass either an id or --all")}
			}

			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.close()

			n, err := s.provider.Remove(cmd.Context(), locator)
			if err != nil {
				return err
			}
			if all {
				return reportAffected(cmd, a, "", n, "Deleted")
			}
			return reportAffected(cmd, a, args[0], n, "Deleted")
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "delete every decor")
	return cmd
}

// reportAffected prints the affected count. A single-item command that
// touched nothing reports the item as not found.
func reportAffected(cmd *cobra.Command, a *app, arg string, n int64, verb string) error {
	if n == 0 && isItem(arg) {
		return fmt.Errorf("decor %s: %w", arg, types.ErrNotFound)
	}
	if a.jsonMode {
		return printJSON(cmd.OutOrStdout(), map[string]any{"affected": n})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d decor(s)\n", verb, n)
	return nil
}

func isItem(arg string) bool {
	if arg == "" {
		return false
	}
	m, err := router.Default().Match(locatorArg(arg))
	return err == nil && m.Kind == router.Item
}
