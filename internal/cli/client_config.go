package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"plasma/internal/app"
	"plasma/internal/infra/project"
)

type serverLaunch struct {
	Command string   `json:"command" toml:"command"`
	Args    []string `json:"args" toml:"args"`
}

type jsonClientConfig struct {
	MCPServers map[string]serverLaunch `json:"mcpServers"`
}

type tomlClientConfig struct {
	MCPServers map[string]serverLaunch `toml:"mcp_servers"`
}

func newClientConfigCmd(opts *cliOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "client-config [path]",
		Short: "Print the configuration a client needs to launch this server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRoot(args, 0)
			if err != nil {
				return err
			}
			projectCfg, err := project.NewLoader(opts.logger).Load(cmd.Context(), root)
			if err != nil {
				return err
			}
			executable, err := opts.executable()
			if err != nil {
				return fmt.Errorf("locate executable: %w", err)
			}

			key := app.ServerKey(projectCfg)
			launch := serverLaunch{Command: executable, Args: []string{"serve", projectCfg.Root}}
			data, err := renderClientConfig(format, key, launch)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format (json, toml)")
	return cmd
}

func renderClientConfig(format, key string, launch serverLaunch) ([]byte, error) {
	servers := map[string]serverLaunch{key: launch}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		data, err := json.MarshalIndent(jsonClientConfig{MCPServers: servers}, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "toml":
		return toml.Marshal(tomlClientConfig{MCPServers: servers})
	default:
		return nil, fmt.Errorf("--format: unsupported format %q", format)
	}
}
