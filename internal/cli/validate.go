package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"plasma/internal/domain"
)

type validateReport struct {
	Root       string              `json:"root"`
	Name       string              `json:"name"`
	Version    string              `json:"version"`
	Components map[domain.Kind]int `json:"components"`
	Total      int                 `json:"total"`
}

func newValidateCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Load the project configuration and components without serving",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRoot(args, 0)
			if err != nil {
				return err
			}
			application, cleanup, err := opts.boot(cmd.Context(), root)
			if err != nil {
				return exitWith(1, fmt.Sprintf("invalid project %s: %v", root, err))
			}
			defer cleanup()

			snapshot := application.Snapshot()
			report := validateReport{
				Root:       root,
				Name:       application.Project().Name,
				Version:    application.Project().Version,
				Components: snapshot.Summary(),
				Total:      snapshot.Total(),
			}
			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, report)
			}
			fmt.Fprintf(out, "%s %s: ok\n", report.Name, report.Version)
			for _, kind := range domain.Kinds {
				fmt.Fprintf(out, "  %ss: %d\n", kind, report.Components[kind])
			}
			return nil
		},
	}
}
