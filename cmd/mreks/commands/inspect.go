package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/mreks/cmd/mreks/handlers"
)

// Status returns the command showing live cluster state.
func Status() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of both clusters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.Context(), configPath)
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

// Preflight returns the command checking both regions before deployment.
func Preflight() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Check both regions can host the clusters",
		Long: `Check that each region has enough available zones for the configured
network and offers every worker instance type. Exits non-zero when a check
fails.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Preflight(cmd.Context(), configPath)
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}
