package cmd

import (
	"github.com/huangsam/watchlist/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the watchlist MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents manage watchlists via standard tools.

Tools: add_to_list, remove_from_list, get_my_list, health

Logs go to stderr so they never mix with the protocol on stdout.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		defer Shutdown()
		return mcp.StartMCPServer(rootCtx, app.service, version)
	},
}
