package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Boswecw/cortex-local/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server over stdio for agent-driven search and export",
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	srv := mcpserver.New(application.surface)
	return srv.Serve(context.Background())
}
