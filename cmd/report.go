package cmd

import (
	"github.com/huangsam/timesplit/core"
	"github.com/huangsam/timesplit/internal/contract"
	"github.com/spf13/cobra"
)

// reportCmd prints per-branch metrics from the interval store.
var reportCmd = &cobra.Command{
	Use:   "report [repo-path]",
	Short: "Show active and inactive time per branch.",
	Long: `Aggregate the stored intervals of a repository into per-branch metrics.

Each branch shows its active, inactive and total time, the share of active time
and when it was first and last seen. The header line summarizes every branch
even when --limit cuts the table short.

Without a repository argument, the report covers every tracked repository.

Examples:
  # Branches of the current repository over the last week
  timesplit report . --since "7 days"

  # Busiest branches first
  timesplit report . --sort total --limit 10

  # The raw intervals behind the report
  timesplit report . --intervals --output csv --output-file intervals.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: optionalRepoSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReport(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run report", err)
		}
	},
}
