package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"plasma/internal/buildinfo"
)

func newVersionCmd(_ *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", cmd.Root().Name(), buildinfo.String())
			return err
		},
	}
}
