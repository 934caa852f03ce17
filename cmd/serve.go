package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/flowactivate/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing org listing and flow activation tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		setupLogging(cfg)

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "flowactivate MCP server started on stdio (cli=%s, api=v%s)\n", cfg.CLIPath, cfg.APIVersion)

		srv := mcpserver.NewServer(newDirectory(cfg), newActivator(cfg))
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
