package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/mreks/cmd/mreks/handlers"
)

type clusterFlags struct {
	configPath string
	region     string
	kubeconfig string
}

func (f *clusterFlags) bind(cmd *cobra.Command) {
	configFlag(cmd, &f.configPath)
	cmd.Flags().StringVarP(&f.region, "region", "r", "", "Target region (default: primary region)")
	cmd.Flags().StringVar(&f.kubeconfig, "kubeconfig", "", "Path to the cluster's kubeconfig")
	_ = cmd.MarkFlagRequired("kubeconfig")
}

// Addons returns the add-on command group.
func Addons() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addons",
		Short: "Manage cluster add-ons",
	}
	cmd.AddCommand(addonsInstall())
	return cmd
}

func addonsInstall() *cobra.Command {
	var f clusterFlags

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the cluster add-ons",
		Long: `Bind the aws-node service account to its IAM role and install the load
balancer controller, cluster autoscaler, CloudWatch metrics, Calico and
Prometheus into the cluster of one region.

Examples:
  mreks addons install --kubeconfig ~/.kube/us-west-2
  mreks addons install -r us-east-2 --kubeconfig ~/.kube/us-east-2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.AddonsInstall(cmd.Context(), f.configPath, f.region, f.kubeconfig)
		},
	}

	f.bind(cmd)
	return cmd
}

// Workloads returns the workload command group.
func Workloads() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workloads",
		Short: "Manage workload bundles",
	}
	cmd.AddCommand(workloadsApply())
	return cmd
}

func workloadsApply() *cobra.Command {
	var f clusterFlags

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the region's manifests and install Flux",
		Long: `Apply the common manifests followed by the region's own manifests using
server-side apply, then install Flux.

Examples:
  mreks workloads apply -r us-west-2 --kubeconfig ~/.kube/us-west-2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.WorkloadsApply(cmd.Context(), f.configPath, f.region, f.kubeconfig)
		},
	}

	f.bind(cmd)
	return cmd
}
