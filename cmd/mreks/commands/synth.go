package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/mreks/cmd/mreks/handlers"
)

// Synth returns the command writing every declared stack to disk.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file
//	--output, -o: Output directory (default: cdk.out)
//	--upload: Publish the output to the artifacts bucket
func Synth() *cobra.Command {
	var (
		configPath string
		outDir     string
		upload     bool
	)

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize all stacks to templates",
		Long: `Declare the cluster stack of both regions, the workload bundles and the
release pipeline, and write them to the output directory.

Without a configuration file the default two-region layout (us-west-2 and
us-east-2) is synthesized. The AWS account is taken from the configuration,
from CDK_DEFAULT_ACCOUNT or from the caller identity.

Examples:
  mreks synth
  mreks synth -c production.yaml -o out --upload`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Synth(cmd.Context(), configPath, outDir, upload)
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&outDir, "output", "o", handlers.DefaultOutputDir, "Output directory")
	cmd.Flags().BoolVar(&upload, "upload", false, "Upload the output to the artifacts bucket")

	return cmd
}

// Plan returns the command printing the declaration graph.
func Plan() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the declaration order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Plan(cmd.Context(), configPath)
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}
