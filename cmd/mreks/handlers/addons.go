package handlers

import (
	"context"
	"fmt"
)

// AddonsInstall patches the aws-node service account and installs the five
// cluster add-ons into the cluster of region.
func AddonsInstall(ctx context.Context, configPath, region, kubeconfigPath string) error {
	cfg, err := loadResolved(ctx, configPath)
	if err != nil {
		return err
	}
	res, err := declareCluster(ctx, cfg, region)
	if err != nil {
		return err
	}

	kubeconfig, err := readFile(kubeconfigPath)
	if err != nil {
		return fmt.Errorf("failed to read kubeconfig: %w", err)
	}
	applier, err := newApplier(kubeconfig)
	if err != nil {
		return err
	}

	refs, err := applier.ApplyManifests(ctx, res.AWSNodePatch)
	if err != nil {
		return fmt.Errorf("failed to patch aws-node service account: %w", err)
	}
	for _, ref := range refs {
		logger.Info("applied", "object", ref.String())
	}

	if err := newReleaseInstaller(kubeconfig, loadTimeouts()).Install(ctx, res.Addons...); err != nil {
		return err
	}

	printTitle(fmt.Sprintf("Add-ons installed on %s in %s", res.Handle.Name, res.Handle.Region.Name))
	for _, r := range res.Addons {
		printField(string(r.Kind), r.String())
	}
	return nil
}
