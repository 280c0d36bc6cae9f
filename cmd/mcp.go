package cmd

import (
	"github.com/huangsam/timesplit/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [repo-path]",
	Short: "Start the Timesplit MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents query tracked branch time.

Tools:
  get_branch_metrics - Active and inactive time per branch
  list_intervals     - Raw stored intervals
  get_store_status   - Backend and contents of the store

A repository argument sets the default repo_path of every tool.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: optionalRepoSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
