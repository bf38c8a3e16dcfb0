package workload

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"sigs.k8s.io/yaml"

	"github.com/imamik/mreks/internal/addons"
	"github.com/imamik/mreks/internal/addons/k8sclient"
	"github.com/imamik/mreks/internal/config"
	"github.com/imamik/mreks/internal/topology"
	"github.com/imamik/mreks/internal/util/naming"
)

// Applier applies manifests to a cluster.
type Applier interface {
	ApplyManifests(ctx context.Context, manifests []byte) ([]k8sclient.ObjectRef, error)
}

// Installer installs Helm releases into a cluster.
type Installer interface {
	Install(ctx context.Context, releases ...addons.Release) error
}

// Bundle is everything the deployer applies to one cluster.
type Bundle struct {
	StackName string
	Handle    topology.ClusterHandle
	Manifests ManifestSet
	Flux      addons.Release
}

// Deployer declares and applies workload bundles.
type Deployer struct {
	flux config.FluxConfig
	log  logr.Logger
}

// NewDeployer creates a deployer installing Flux from cfg.
func NewDeployer(cfg *config.Config, log logr.Logger) *Deployer {
	return &Deployer{flux: cfg.Flux, log: log}
}

// Declare binds set to the cluster behind handle.
func (d *Deployer) Declare(handle topology.ClusterHandle, set ManifestSet) (Bundle, error) {
	if set.Region != handle.Region.Name {
		return Bundle{}, fmt.Errorf("manifests for %s cannot target cluster %s in %s", set.Region, handle.Name, handle.Region.Name)
	}

	flux := addons.Flux(d.flux)
	if err := flux.Validate(); err != nil {
		return Bundle{}, err
	}

	return Bundle{
		StackName: naming.ContainerStack(handle.Region.Name),
		Handle:    handle,
		Manifests: set,
		Flux:      flux,
	}, nil
}

// Apply applies the bundle's manifests in order and then installs Flux.
// The first failure stops the run; nothing already applied is reverted.
func (d *Deployer) Apply(ctx context.Context, b Bundle, applier Applier, installer Installer) error {
	log := d.log.WithValues("cluster", b.Handle.Name, "region", b.Handle.Region.Name)
	start := time.Now()

	for i, m := range b.Manifests.Manifests {
		if err := ctx.Err(); err != nil {
			return err
		}
		refs, err := applier.ApplyManifests(ctx, m.Data)
		if err != nil {
			return fmt.Errorf("failed to apply %s: %w", m.Source, err)
		}
		log.Info("applied manifest", "source", m.Source, "objects", len(refs), "step", fmt.Sprintf("%d/%d", i+1, b.Manifests.Len()))
	}

	if err := installer.Install(ctx, b.Flux); err != nil {
		return err
	}

	log.Info("workloads applied", "manifests", b.Manifests.Len(), "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

type bundleDocument struct {
	Stack     string         `json:"stack"`
	Cluster   string         `json:"cluster"`
	Region    string         `json:"region"`
	Manifests []string       `json:"manifests"`
	Flux      addons.Release `json:"flux"`
}

// Render describes the bundle as YAML.
func (b Bundle) Render() ([]byte, error) {
	out, err := yaml.Marshal(bundleDocument{
		Stack:     b.StackName,
		Cluster:   b.Handle.Name,
		Region:    b.Handle.Region.Name,
		Manifests: b.Manifests.Sources(),
		Flux:      b.Flux,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render workload bundle: %w", err)
	}
	return out, nil
}
