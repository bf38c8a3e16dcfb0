package addons

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"helm.sh/helm/v3/pkg/release"

	"github.com/imamik/mreks/internal/addons/helm"
)

// ReleaseInstaller installs one Helm release.
type ReleaseInstaller interface {
	InstallOrUpgrade(ctx context.Context, releaseName string, spec helm.ChartSpec, values helm.Values) (*release.Release, error)
}

// ClientFactory creates a ReleaseInstaller scoped to namespace.
type ClientFactory func(kubeconfig []byte, namespace string) (ReleaseInstaller, error)

// HelmClientFactory returns a ClientFactory backed by helm.NewClient.
func HelmClientFactory(opts ...helm.Option) ClientFactory {
	return func(kubeconfig []byte, namespace string) (ReleaseInstaller, error) {
		return helm.NewClient(kubeconfig, namespace, opts...)
	}
}

// Installer installs releases into one cluster.
type Installer struct {
	kubeconfig []byte
	newClient  ClientFactory
	log        logr.Logger
	clients    map[string]ReleaseInstaller
}

// NewInstaller creates an installer for the cluster addressed by kubeconfig.
func NewInstaller(kubeconfig []byte, factory ClientFactory, log logr.Logger) *Installer {
	return &Installer{
		kubeconfig: kubeconfig,
		newClient:  factory,
		log:        log,
		clients:    make(map[string]ReleaseInstaller),
	}
}

// Install installs releases in the given order. The first failure stops the
// installation and is returned; nothing is rolled back.
func (i *Installer) Install(ctx context.Context, releases ...Release) error {
	for _, r := range releases {
		if err := r.Validate(); err != nil {
			return err
		}
	}

	for idx, r := range releases {
		if err := ctx.Err(); err != nil {
			return err
		}

		client, err := i.client(r.Namespace)
		if err != nil {
			return fmt.Errorf("failed to create helm client for %s: %w", r.Namespace, err)
		}

		start := time.Now()
		i.log.Info("installing add-on", "release", r.Name, "namespace", r.Namespace, "kind", r.Kind, "step", fmt.Sprintf("%d/%d", idx+1, len(releases)))
		rel, err := client.InstallOrUpgrade(ctx, r.Name, r.Chart, r.Values)
		if err != nil {
			return fmt.Errorf("failed to install add-on %s: %w", r.Name, err)
		}

		revision := 0
		if rel != nil {
			revision = rel.Version
		}
		i.log.Info("add-on installed", "release", r.Name, "revision", revision, "duration", time.Since(start).Round(time.Millisecond))
	}
	return nil
}

func (i *Installer) client(namespace string) (ReleaseInstaller, error) {
	if c, ok := i.clients[namespace]; ok {
		return c, nil
	}
	c, err := i.newClient(i.kubeconfig, namespace)
	if err != nil {
		return nil, err
	}
	i.clients[namespace] = c
	return c, nil
}
