package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/mreks/cmd/mreks/handlers"
)

// Pipeline returns the release pipeline command group.
func Pipeline() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run the release pipeline",
	}
	cmd.AddCommand(pipelineRun())
	cmd.AddCommand(pipelineHistory())
	return cmd
}

func pipelineRun() *cobra.Command {
	var opts handlers.PipelineRunOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run source, build, deploy, approval and second deploy",
		Long: `Run the release pipeline locally:

  Source → Build → DeployPrimary → ApproveGate → DeploySecondary

The approval gate prompts on a terminal. Elsewhere, --approve or --reject
decides it up front. A rejected gate stops the run before the secondary
region is touched.

Examples:
  mreks pipeline run
  mreks pipeline run --tui
  mreks pipeline run --dry-run --approve
  mreks pipeline run --reject --comment "error rate up"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.PipelineRun(cmd.Context(), opts)
		},
	}

	configFlag(cmd, &opts.ConfigPath)
	cmd.Flags().StringVar(&opts.SourceDir, "source", ".", "Git checkout to release")
	cmd.Flags().StringVar(&opts.Branch, "branch", "", "Branch to release (default: HEAD)")
	cmd.Flags().BoolVar(&opts.Approve, "approve", false, "Approve the gate without prompting")
	cmd.Flags().BoolVar(&opts.Reject, "reject", false, "Reject the gate without prompting")
	cmd.Flags().StringVar(&opts.Approver, "approver", "", "Name recorded with the decision (default: $USER)")
	cmd.Flags().StringVar(&opts.Comment, "comment", "", "Comment recorded with the decision")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print build and deploy commands instead of running them")
	cmd.Flags().BoolVar(&opts.Dashboard, "tui", false, "Show a live dashboard and decide the gate in it")
	cmd.Flags().StringVar(&opts.HistoryPath, "history", handlers.DefaultHistoryPath, "Execution history database")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write stage metrics to this textfile")
	cmd.MarkFlagsMutuallyExclusive("approve", "reject")

	return cmd
}

func pipelineHistory() *cobra.Command {
	var (
		historyPath string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "history [execution-id]",
		Short: "List previous pipeline executions or show one of them",
		Long: `Without arguments, list the latest pipeline executions, newest first.
With an execution ID, or a unique prefix of one, show that execution stage by stage.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			return handlers.PipelineHistory(cmd.Context(), historyPath, id, limit)
		},
	}

	cmd.Flags().StringVar(&historyPath, "history", handlers.DefaultHistoryPath, "Execution history database")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of executions to show, 0 for all")
	return cmd
}
