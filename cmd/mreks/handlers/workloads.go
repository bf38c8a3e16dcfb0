package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/mreks/internal/provisioning/workload"
)

// WorkloadsApply applies the region's manifest bundle and installs Flux.
func WorkloadsApply(ctx context.Context, configPath, region, kubeconfigPath string) error {
	cfg, err := loadResolved(ctx, configPath)
	if err != nil {
		return err
	}
	res, err := declareCluster(ctx, cfg, region)
	if err != nil {
		return err
	}

	set, err := workload.LoadManifestSet(cfg.Manifests.Root, cfg.Manifests.CommonDir, res.Handle.Region.Name)
	if err != nil {
		return err
	}
	deployer := workload.NewDeployer(cfg, logger)
	bundle, err := deployer.Declare(res.Handle, set)
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

	t := loadTimeouts()
	applyCtx, cancel := context.WithTimeout(ctx, t.ManifestApply)
	defer cancel()
	if err := deployer.Apply(applyCtx, bundle, applier, newReleaseInstaller(kubeconfig, t)); err != nil {
		return err
	}

	printTitle(fmt.Sprintf("%s applied to %s in %s", bundle.StackName, res.Handle.Name, res.Handle.Region.Name))
	for _, src := range set.Sources() {
		printField("manifest", src)
	}
	printField("flux", bundle.Flux.String())
	return nil
}
