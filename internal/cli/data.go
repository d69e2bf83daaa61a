package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/decors/internal/sqlite"
	"github.com/mesh-intelligence/decors/pkg/types"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample decors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.close()

			var ids []int64
			for _, v := range sqlite.SampleDecors() {
				id, err := s.provider.Insert(cmd.Context(), types.CollectionLocator, v)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{"ids": ids})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d sample decor(s)\n", len(ids))
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write every decor to a JSON Lines file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.close()

			n, err := s.backend.Export(cmd.Context(), args[0])
			if err != nil {
				return systemError{fmt.Errorf("export: %w", err)}
			}
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{"exported": n, "path": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d decor(s) to %s\n", n, args[0])
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load decors from a file written by export",
		Long: `Import keeps the ids stored in the file. Records that fail validation or
whose id is already taken are skipped and counted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.close()

			res, err := s.backend.Import(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"imported":   res.Imported,
					"invalid":    res.Invalid,
					"duplicates": res.Duplicates,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d decor(s), skipped %d invalid and %d duplicate(s)\n",
				res.Imported, res.Invalid, res.Duplicates)
			return nil
		},
	}
}
