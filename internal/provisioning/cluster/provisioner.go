package cluster

import (
	"context"
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"

	"github.com/imamik/mreks/internal/addons"
	"github.com/imamik/mreks/internal/cfn"
	"github.com/imamik/mreks/internal/config"
	"github.com/imamik/mreks/internal/provisioning"
	"github.com/imamik/mreks/internal/topology"
	"github.com/imamik/mreks/internal/util/naming"
)

// Result is the synthesized cluster stack of one region.
type Result struct {
	StackName      string
	Template       *cfn.Template
	Handle         topology.ClusterHandle
	DeployIdentity topology.DeployIdentity
	Addons         []addons.Release

	// AWSNodePatch annotates the aws-node service account with the admin role.
	AWSNodePatch []byte
}

// Provisioner declares the cluster stack of a single region.
type Provisioner struct {
	cfg      *config.Config
	region   topology.Region
	observer provisioning.Observer
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithObserver replaces the default console observer.
func WithObserver(o provisioning.Observer) Option {
	return func(p *Provisioner) {
		p.observer = o
	}
}

// NewProvisioner creates a provisioner for region.
func NewProvisioner(cfg *config.Config, region topology.Region, opts ...Option) *Provisioner {
	p := &Provisioner{cfg: cfg, region: region}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Phases returns the phases in execution order.
func (p *Provisioner) Phases() []provisioning.Phase {
	return []provisioning.Phase{
		provisioning.NewValidationPhase(),
		&networkPhase{},
		&identityPhase{},
		&eksPhase{},
		&addonsPhase{},
		&deployIdentityPhase{},
	}
}

// Env returns the account, region and availability zones of the stack.
func (p *Provisioner) Env() cfn.Env {
	return cfn.Env{
		Account: p.cfg.AccountID,
		Region:  p.region.Name,
		Zones:   p.cfg.Network.ZonesFor(p.region.Name),
	}
}

// Provision runs all phases and returns the synthesized stack.
// Any phase failure is returned unchanged apart from the phase name.
func (p *Provisioner) Provision(ctx context.Context) (*Result, error) {
	name := naming.ClusterStack(p.region.Name)

	var res *Result
	err := cfn.Do(func() error {
		env := p.Env()
		app := cfn.NewApp(env)
		stack := app.NewStack(name,
			fmt.Sprintf("EKS cluster %s in %s (%s)", p.cfg.Cluster.Name, p.region.Name, p.region.Role), env)
		awscdk.Tags_Of(stack).Add(jsii.String("project"), jsii.String(p.cfg.Project), nil)

		pctx := provisioning.NewContext(ctx, p.cfg, p.region, stack)
		if p.observer != nil {
			pctx.Observer = p.observer.WithFields(map[string]string{"region": p.region.Name})
		}
		if err := provisioning.RunPhases(pctx, p.Phases()); err != nil {
			return err
		}

		state := pctx.State
		if state.Handle == nil || state.DeployIdentity == nil {
			return fmt.Errorf("phases completed without a cluster handle and deploy identity")
		}

		tmpl, err := app.Template(stack)
		if err != nil {
			return err
		}
		res = &Result{
			StackName:      name,
			Template:       tmpl,
			Handle:         *state.Handle,
			DeployIdentity: state.DeployIdentity,
			Addons:         state.Addons,
			AWSNodePatch:   state.AWSNodePatch,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return res, nil
}

// exportName prefixes an output export with the stack name so exports stay
// unique across regions.
func exportName(ctx *provisioning.Context, name string) string {
	return naming.ClusterStack(ctx.Region.Name) + "-" + name
}
