// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/mreks/cmd/mreks/handlers"
	"github.com/imamik/mreks/internal/logging"
)

type globalOptions struct {
	debug     bool
	logFormat string
	profile   string
}

// Root returns the root command for the mreks CLI.
func Root() *cobra.Command {
	var opts globalOptions

	cmd := &cobra.Command{
		Use:   "mreks",
		Short: "Declare and release a two-region EKS deployment",
		Long: `mreks declares an EKS cluster in a primary and a secondary region, the
workloads running on them and a release pipeline that deploys to the primary
region, waits for approval and then deploys to the secondary region.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.apply()
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", string(logging.FormatConsole), "Log format, one of console or json")
	cmd.PersistentFlags().StringVar(&opts.profile, "profile", "", "AWS shared configuration profile")

	// Declaration
	cmd.AddCommand(Synth())
	cmd.AddCommand(Plan())

	// Cluster-side
	cmd.AddCommand(Addons())
	cmd.AddCommand(Workloads())

	// Release
	cmd.AddCommand(Pipeline())

	// Inspection
	cmd.AddCommand(Status())
	cmd.AddCommand(Preflight())

	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

func (o globalOptions) apply() error {
	format, err := logging.ParseFormat(o.logFormat)
	if err != nil {
		return err
	}
	raw, err := logging.New(logging.Options{Debug: o.debug, Format: format})
	if err != nil {
		return err
	}
	handlers.SetLogger(logging.NewLogr(raw))
	handlers.SetAWSProfile(o.profile)
	return nil
}

func configFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "config", "c", "", "Path to configuration file (default: mreks.yaml, else built-in defaults)")
}
