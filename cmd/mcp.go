package cmd

import (
	"github.com/spf13/cobra"

	"github.com/trackademic/trackademic/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Trackademic MCP server",
	Long:  `Launch an MCP server that allows AI agents to read semester summaries and validate plans via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Progress and warning lines are suppressed per request by the handlers
		// to avoid polluting stdio which is used for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, repository())
	},
}
