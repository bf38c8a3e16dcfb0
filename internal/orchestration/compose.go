package orchestration

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/mreks/internal/config"
	"github.com/imamik/mreks/internal/plan"
	"github.com/imamik/mreks/internal/provisioning"
	"github.com/imamik/mreks/internal/provisioning/cluster"
	"github.com/imamik/mreks/internal/provisioning/release"
	"github.com/imamik/mreks/internal/provisioning/workload"
	"github.com/imamik/mreks/internal/topology"
)

// ReleaseNode is the plan node declaring the release pipeline.
const ReleaseNode = "release"

// ClusterNode returns the plan node declaring region's cluster stack.
func ClusterNode(region string) string { return "cluster/" + region }

// WorkloadNode returns the plan node declaring region's workload bundle.
func WorkloadNode(region string) string { return "workloads/" + region }

// Assembly is the fully declared deployment.
type Assembly struct {
	Regions   topology.Regions
	Clusters  map[string]*cluster.Result
	Workloads map[string]workload.Bundle
	Release   *release.Result
}

// Cluster returns the cluster stack of region.
func (a *Assembly) Cluster(region topology.Region) *cluster.Result {
	return a.Clusters[region.Name]
}

// Composer turns a configuration into an Assembly.
type Composer struct {
	cfg      *config.Config
	log      logr.Logger
	observer provisioning.Observer
}

// Option configures a Composer.
type Option func(*Composer)

// WithObserver sets the observer receiving provisioning events.
func WithObserver(o provisioning.Observer) Option {
	return func(c *Composer) {
		c.observer = o
	}
}

// NewComposer creates a composer. Provisioning events go to log unless an
// observer is set.
func NewComposer(cfg *config.Config, log logr.Logger, opts ...Option) *Composer {
	c := &Composer{cfg: cfg, log: log}
	for _, opt := range opts {
		opt(c)
	}
	if c.observer == nil {
		c.observer = provisioning.NewLogrObserver(log)
	}
	return c
}

// Plan builds the dependency graph of the deployment.
func (c *Composer) Plan() (*plan.Plan, error) {
	return c.plan(true)
}

func (c *Composer) plan(withWorkloads bool) (*plan.Plan, error) {
	regions, err := c.cfg.Topology()
	if err != nil {
		return nil, err
	}

	p := plan.New()
	for _, region := range regions.All() {
		if err := p.Add(plan.Node{
			ID:  ClusterNode(region.Name),
			Run: c.provisionCluster(region),
		}); err != nil {
			return nil, err
		}
	}

	if withWorkloads {
		for _, region := range regions.All() {
			if err := p.Add(plan.Node{
				ID:        WorkloadNode(region.Name),
				DependsOn: []string{ClusterNode(region.Name)},
				Run:       c.declareWorkloads(region),
			}); err != nil {
				return nil, err
			}
		}
	}

	if err := p.Add(plan.Node{
		ID:        ReleaseNode,
		DependsOn: []string{ClusterNode(regions.Primary.Name), ClusterNode(regions.Secondary.Name)},
		Run:       c.provisionRelease(regions),
	}); err != nil {
		return nil, err
	}
	return p, nil
}

// Compose executes the plan and collects the declared stacks.
func (c *Composer) Compose(ctx context.Context) (*Assembly, error) {
	regions, err := c.cfg.Topology()
	if err != nil {
		return nil, err
	}
	p, err := c.Plan()
	if err != nil {
		return nil, err
	}

	results, err := plan.NewExecutor(c.log).Execute(ctx, p)
	if err != nil {
		return nil, err
	}

	a := &Assembly{
		Regions:   regions,
		Clusters:  make(map[string]*cluster.Result),
		Workloads: make(map[string]workload.Bundle),
	}
	for _, region := range regions.All() {
		if a.Clusters[region.Name], err = plan.Get[*cluster.Result](results, ClusterNode(region.Name)); err != nil {
			return nil, err
		}
		if a.Workloads[region.Name], err = plan.Get[workload.Bundle](results, WorkloadNode(region.Name)); err != nil {
			return nil, err
		}
	}
	if a.Release, err = plan.Get[*release.Result](results, ReleaseNode); err != nil {
		return nil, err
	}
	return a, nil
}

// ComposeRelease declares the two cluster stacks and the release pipeline
// only. Workload manifests are not read.
func (c *Composer) ComposeRelease(ctx context.Context) (*release.Result, error) {
	p, err := c.plan(false)
	if err != nil {
		return nil, err
	}
	results, err := plan.NewExecutor(c.log).Execute(ctx, p)
	if err != nil {
		return nil, err
	}
	return plan.Get[*release.Result](results, ReleaseNode)
}

func (c *Composer) provisionCluster(region topology.Region) plan.RunFunc {
	return func(ctx context.Context, _ *plan.Results) (any, error) {
		return cluster.NewProvisioner(c.cfg, region, cluster.WithObserver(c.observer)).Provision(ctx)
	}
}

func (c *Composer) declareWorkloads(region topology.Region) plan.RunFunc {
	return func(_ context.Context, deps *plan.Results) (any, error) {
		cl, err := plan.Get[*cluster.Result](deps, ClusterNode(region.Name))
		if err != nil {
			return nil, err
		}

		set, err := workload.LoadManifestSet(c.cfg.Manifests.Root, c.cfg.Manifests.CommonDir, region.Name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", WorkloadNode(region.Name), err)
		}
		return workload.NewDeployer(c.cfg, c.log).Declare(cl.Handle, set)
	}
}

func (c *Composer) provisionRelease(regions topology.Regions) plan.RunFunc {
	return func(ctx context.Context, deps *plan.Results) (any, error) {
		primary, err := plan.Get[*cluster.Result](deps, ClusterNode(regions.Primary.Name))
		if err != nil {
			return nil, err
		}
		secondary, err := plan.Get[*cluster.Result](deps, ClusterNode(regions.Secondary.Name))
		if err != nil {
			return nil, err
		}

		p, err := release.NewProvisioner(c.cfg, release.Input{
			Primary:   release.Target{Handle: primary.Handle, Identity: primary.DeployIdentity},
			Secondary: release.Target{Handle: secondary.Handle, Identity: secondary.DeployIdentity},
		}, release.WithObserver(c.observer))
		if err != nil {
			return nil, err
		}
		return p.Provision(ctx)
	}
}
