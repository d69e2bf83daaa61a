package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/decors/pkg/decors"
)

const modulePath = "github.com/mesh-intelligence/decors"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the decors version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "decors v%s\nmodule: %s\n", decors.Version, modulePath)
			return nil
		},
	}
}
