package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"plasma/internal/domain"
	"plasma/internal/infra/component"
)

type callReport struct {
	Kind       domain.Kind    `json:"kind"`
	Name       string         `json:"name"`
	Params     map[string]any `json:"params"`
	Result     any            `json:"result"`
	DurationMs int64          `json:"durationMs"`
}

func newCallCmd(opts *cliOptions) *cobra.Command {
	var (
		argPairs []string
		rawInput string
	)
	cmd := &cobra.Command{
		Use:   "call <kind> <name> [path]",
		Short: "Construct and run one component without a client",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := domain.ParseKind(args[0])
			if !ok {
				return fmt.Errorf("unknown kind %q", args[0])
			}
			input, err := callInput(rawInput, argPairs)
			if err != nil {
				return err
			}
			root, err := projectRoot(args, 2)
			if err != nil {
				return err
			}
			application, cleanup, err := opts.boot(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer cleanup()

			inv, err := application.Call(cmd.Context(), kind, args[1], input)
			if err != nil {
				if component.IsInvalidInput(err) {
					return exitWith(2, err.Error())
				}
				return err
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), callReport{
					Kind:       kind,
					Name:       args[1],
					Params:     inv.Params.Map(),
					Result:     inv.Value,
					DurationMs: inv.Duration.Milliseconds(),
				})
			}
			return printResult(cmd, inv.Value)
		},
	}
	cmd.Flags().StringArrayVar(&argPairs, "arg", nil, "argument as name=value (repeatable)")
	cmd.Flags().StringVar(&rawInput, "input", "", "arguments as a JSON object")
	return cmd
}

// callInput merges the JSON input with --arg pairs; pairs win. Values from
// pairs stay strings and are coerced like any client input.
func callInput(raw string, pairs []string) (map[string]any, error) {
	input, err := component.DecodeArguments(json.RawMessage(strings.TrimSpace(raw)))
	if err != nil {
		return nil, fmt.Errorf("--input: %w", err)
	}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("--arg %q: want name=value", pair)
		}
		input[name] = value
	}
	return input, nil
}

func printResult(cmd *cobra.Command, value any) error {
	out := cmd.OutOrStdout()
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		_, err := fmt.Fprintln(out, v)
		return err
	case []byte:
		_, err := fmt.Fprintln(out, string(v))
		return err
	case []domain.PromptMessage:
		for _, msg := range v {
			if _, err := fmt.Fprintf(out, "[%s] %s\n", msg.Role, msg.Content); err != nil {
				return err
			}
		}
		return nil
	default:
		return writeJSON(out, v)
	}
}
