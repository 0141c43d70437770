// Package cli is the command line shared by the plasma binary and by
// applications built with plasma.Main.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"plasma/internal/app"
	"plasma/internal/infra/registry"
)

// Options configures the root command.
type Options struct {
	// Use is the binary name shown in help and version output.
	Use string
	// Registrar holds the compiled components; nil means registry.Default.
	Registrar *registry.Registrar
	// Logger replaces the logger built from --log-level.
	Logger *zap.Logger
}

type cliOptions struct {
	registrar  *registry.Registrar
	logLevel   string
	jsonOutput bool
	logger     *zap.Logger
	fixed      bool
	executable func() (string, error)
}

func NewRootCommand(opts Options) *cobra.Command {
	use := strings.TrimSpace(opts.Use)
	if use == "" {
		use = "plasma"
	}
	state := &cliOptions{
		registrar:  opts.Registrar,
		logLevel:   "info",
		logger:     opts.Logger,
		fixed:      opts.Logger != nil,
		executable: os.Executable,
	}
	if state.logger == nil {
		state.logger = zap.NewNop()
	}

	root := &cobra.Command{
		Use:           use,
		Short:         "Serve MCP tools, prompts and resources from a plasma project",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			applyRootFlagBindings(cmd, state)
			return state.buildLogger()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = state.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&state.logLevel, "log-level", state.logLevel, "log level written to stderr (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&state.jsonOutput, "json", false, "output JSON")

	root.AddCommand(
		newServeCmd(state),
		newValidateCmd(state),
		newListCmd(state),
		newCallCmd(state),
		newClientConfigCmd(state),
		newVersionCmd(state),
	)
	return root
}

// Execute runs the root command with args and returns the process exit code.
func Execute(opts Options, args []string) int {
	root := NewRootCommand(opts)
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return 0
	}
	var exitErr exitError
	if errors.As(err, &exitErr) {
		if !exitErr.silent && exitErr.message != "" {
			fmt.Fprintln(root.ErrOrStderr(), exitErr.message)
		}
		return exitErr.code
	}
	fmt.Fprintln(root.ErrOrStderr(), "Error:", err.Error())
	return 1
}

func applyRootFlagBindings(cmd *cobra.Command, opts *cliOptions) {
	flags := cmd.Flags()
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "log-level":
			opts.logLevel, _ = flags.GetString("log-level")
		case "json":
			opts.jsonOutput, _ = flags.GetBool("json")
		}
	})
}

// buildLogger writes production JSON logs to stderr; stdout belongs to the
// MCP stdio transport.
func (o *cliOptions) buildLogger() error {
	if o.fixed {
		return nil
	}
	level, err := zapcore.ParseLevel(o.logLevel)
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	o.logger = logger
	return nil
}

// projectRoot resolves the optional project path argument.
func projectRoot(args []string, index int) (string, error) {
	root := "."
	if len(args) > index && strings.TrimSpace(args[index]) != "" {
		root = args[index]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve project root: %w", err)
	}
	return abs, nil
}

// boot builds the application for root. The caller must run the returned cleanup.
func (o *cliOptions) boot(ctx context.Context, root string) (*app.Application, func(), error) {
	return app.InitializeApplication(ctx, app.ServeConfig{
		Root:      root,
		Registrar: o.registrar,
	}, app.LoggingConfig{Logger: o.logger})
}
