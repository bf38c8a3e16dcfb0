// Package handlers implements the business logic for CLI commands.
//
// Handlers are called by the command definitions in the commands package and
// can be tested independently of the CLI framework: every external client is
// created through a factory variable that tests replace.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"

	"github.com/imamik/mreks/internal/addons"
	"github.com/imamik/mreks/internal/addons/helm"
	"github.com/imamik/mreks/internal/addons/k8sclient"
	"github.com/imamik/mreks/internal/config"
	awsplatform "github.com/imamik/mreks/internal/platform/aws"
	"github.com/imamik/mreks/internal/provisioning"
	"github.com/imamik/mreks/internal/provisioning/cluster"
	"github.com/imamik/mreks/internal/provisioning/workload"
	"github.com/imamik/mreks/internal/util/retry"
)

// artifactUploader publishes synthesized output.
type artifactUploader interface {
	EnsureBucket(ctx context.Context, bucket string) error
	Upload(ctx context.Context, bucket, prefix, root string, files []string) ([]string, error)
}

// clusterInspector reads live cluster and region state.
type clusterInspector interface {
	ClusterStatus(ctx context.Context, region, name string) (awsplatform.ClusterStatus, error)
	PreflightRegions(ctx context.Context, regions, instanceTypes []string, maxAZs int) ([]awsplatform.Finding, error)
}

var (
	logger     = logr.Discard()
	awsProfile string
)

// SetLogger sets the logger used by all handlers.
func SetLogger(l logr.Logger) {
	logger = l
}

// SetAWSProfile selects a shared configuration profile for AWS calls.
func SetAWSProfile(profile string) {
	awsProfile = profile
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig loads and validates the configuration.
	loadConfig = config.Resolve

	// loadTimeouts reads timeout overrides from the environment.
	loadTimeouts = config.LoadTimeouts

	// loadAWSConfig loads SDK configuration for a region.
	loadAWSConfig = func(ctx context.Context, region string) (aws.Config, error) {
		return awsplatform.LoadConfig(ctx, region, awsplatform.Options{Profile: awsProfile})
	}

	// newCallerIdentity creates the STS client resolving the account.
	newCallerIdentity = func(cfg aws.Config) awsplatform.CallerIdentityAPI {
		return sts.NewFromConfig(cfg)
	}

	// newUploader creates the artifact uploader.
	newUploader = func(cfg aws.Config, endpoint string) artifactUploader {
		return awsplatform.NewUploader(cfg, endpoint)
	}

	// newInspector creates the cluster inspector.
	newInspector = func(cfg aws.Config) clusterInspector {
		return awsplatform.NewInspector(cfg)
	}

	// newApplier creates a manifest applier for a cluster.
	newApplier = func(kubeconfig []byte) (workload.Applier, error) {
		return k8sclient.NewFromKubeconfig(kubeconfig)
	}

	// newReleaseInstaller creates a Helm release installer for a cluster.
	newReleaseInstaller = func(kubeconfig []byte, t *config.Timeouts) workload.Installer {
		factory := addons.HelmClientFactory(helm.WithTimeout(t.HelmInstall), helm.WithLogger(logger))
		return addons.NewInstaller(kubeconfig, factory, logger)
	}

	// readFile reads a file (for testing injection).
	readFile = os.ReadFile

	// isInteractiveTTY reports whether prompts can be shown.
	isInteractiveTTY = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// resolveAccount fills in the account from the caller identity when the
// configuration does not name one.
func resolveAccount(ctx context.Context, cfg *config.Config) error {
	if cfg.HasAccount() {
		return cfg.RequireAccount()
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.Regions.Primary)
	if err != nil {
		return err
	}
	t := loadTimeouts()
	account, err := awsplatform.ResolveAccount(ctx, newCallerIdentity(awsCfg),
		retry.WithMaxRetries(t.RetryMaxAttempts),
		retry.WithInitialDelay(t.RetryInitialDelay),
	)
	if err != nil {
		return err
	}

	logger.V(1).Info("resolved AWS account", "account", account)
	cfg.AccountID = account
	return cfg.RequireAccount()
}

// declareCluster declares the cluster stack of regionName, or of the primary
// region when regionName is empty.
func declareCluster(ctx context.Context, cfg *config.Config, regionName string) (*cluster.Result, error) {
	regions, err := cfg.Topology()
	if err != nil {
		return nil, err
	}

	region := regions.Primary
	if regionName != "" {
		r, ok := regions.Lookup(regionName)
		if !ok {
			return nil, fmt.Errorf("region %s is not part of this deployment (%s, %s)", regionName, regions.Primary.Name, regions.Secondary.Name)
		}
		region = r
	}

	observer := provisioning.NewLogrObserver(logger)
	return cluster.NewProvisioner(cfg, region, cluster.WithObserver(observer)).Provision(ctx)
}

// loadResolved loads the configuration and resolves the account.
func loadResolved(ctx context.Context, configPath string) (*config.Config, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := resolveAccount(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
