package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"plasma/internal/app"
	"plasma/internal/domain"
)

func newListCmd(opts *cliOptions) *cobra.Command {
	var kindFlag string
	cmd := &cobra.Command{
		Use:   "list [path]",
		Short: "Print the capability listing clients receive",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindFlag(kindFlag)
			if err != nil {
				return err
			}
			root, err := projectRoot(args, 0)
			if err != nil {
				return err
			}
			application, cleanup, err := opts.boot(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer cleanup()

			listing := application.Listing(kind)
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), listing)
			}
			return printListing(cmd, listing)
		},
	}
	cmd.Flags().StringVar(&kindFlag, "kind", "", "only list one kind (tool, prompt, resource)")
	return cmd
}

func parseKindFlag(value string) (domain.Kind, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	kind, ok := domain.ParseKind(value)
	if !ok {
		return "", fmt.Errorf("--kind: unknown kind %q", value)
	}
	return kind, nil
}

func printListing(cmd *cobra.Command, listing app.Listing) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s (revision %d)\n", listing.Name, listing.Version, listing.Revision)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, entry := range listing.Components {
		target := entry.URI
		if target == "" {
			target = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", entry.Kind, entry.Name, target, firstLine(entry.Description))
	}
	return w.Flush()
}
