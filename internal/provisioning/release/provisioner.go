package release

import (
	"context"
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscodebuild"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscodecommit"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecr"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/jsii-runtime-go"

	"github.com/imamik/mreks/internal/buildspec"
	"github.com/imamik/mreks/internal/cfn"
	"github.com/imamik/mreks/internal/config"
	"github.com/imamik/mreks/internal/pipeline"
	"github.com/imamik/mreks/internal/provisioning"
	"github.com/imamik/mreks/internal/topology"
	"github.com/imamik/mreks/internal/util/naming"
)

// SourceBranch is the branch the source stage follows.
const SourceBranch = "master"

// Target is a cluster the pipeline deploys to.
type Target struct {
	Handle   topology.ClusterHandle
	Identity topology.DeployIdentity
}

// Input is what the pipeline consumes from the two cluster stacks.
type Input struct {
	Primary   Target
	Secondary Target
}

// Result is the synthesized CicdStack.
type Result struct {
	StackName string
	Template  *cfn.Template

	SourceRepository   string
	ImageRepositoryURI string
	// Stages lists the declared pipeline stages in order.
	Stages []pipeline.StageKind

	ImageBuild      buildspec.Spec
	PrimaryDeploy   buildspec.DeployTarget
	SecondaryDeploy buildspec.DeployTarget
}

// Provisioner declares the release pipeline.
type Provisioner struct {
	cfg      *config.Config
	in       Input
	primary  topology.PrimaryIdentity
	second   topology.SecondaryIdentity
	observer provisioning.Observer

	// constructs shared between phases
	decl struct {
		repo     awscodecommit.Repository
		bucket   awss3.Bucket
		registry awsecr.Repository

		build, deployPrimary, deploySecond awscodebuild.PipelineProject
	}
	result *Result
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithObserver replaces the default console observer.
func WithObserver(o provisioning.Observer) Option {
	return func(p *Provisioner) {
		p.observer = o
	}
}

// NewProvisioner checks that in carries a primary identity for the primary
// cluster and a secondary identity for the secondary one.
func NewProvisioner(cfg *config.Config, in Input, opts ...Option) (*Provisioner, error) {
	primary, ok := in.Primary.Identity.(topology.PrimaryIdentity)
	if !ok {
		return nil, fmt.Errorf("primary target needs a %s, got %v", topology.RolePrimary.Label(), describe(in.Primary.Identity))
	}
	second, ok := in.Secondary.Identity.(topology.SecondaryIdentity)
	if !ok {
		return nil, fmt.Errorf("secondary target needs a %s, got %v", topology.RoleSecondary.Label(), describe(in.Secondary.Identity))
	}
	if !in.Primary.Handle.Region.IsPrimary() || in.Secondary.Handle.Region.IsPrimary() {
		return nil, fmt.Errorf("cluster handles are not in primary, secondary order")
	}

	p := &Provisioner{cfg: cfg, in: in, primary: primary, second: second}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func describe(id topology.DeployIdentity) string {
	if id == nil {
		return "no identity"
	}
	return id.Label()
}

// Phases returns the phases in execution order.
func (p *Provisioner) Phases() []provisioning.Phase {
	return []provisioning.Phase{
		provisioning.NewValidationPhase(),
		provisioning.PhaseFunc{PhaseName: "source", Fn: p.declareSource},
		provisioning.PhaseFunc{PhaseName: "build", Fn: p.declareBuild},
		provisioning.PhaseFunc{PhaseName: "deploy", Fn: p.declareDeploy},
		provisioning.PhaseFunc{PhaseName: "pipeline", Fn: p.declarePipeline},
	}
}

// Provision declares the stack in the primary region and synthesizes it.
func (p *Provisioner) Provision(ctx context.Context) (*Result, error) {
	name := naming.CicdStack()
	region := p.in.Primary.Handle.Region
	p.result = &Result{StackName: name}

	err := cfn.Do(func() error {
		env := cfn.Env{Account: p.cfg.AccountID, Region: region.Name}
		app := cfn.NewApp(env)
		stack := app.NewStack(name, "Release pipeline across "+region.Name+" and "+p.in.Secondary.Handle.Region.Name, env)
		awscdk.Tags_Of(stack).Add(jsii.String("project"), jsii.String(p.cfg.Project), nil)

		pctx := provisioning.NewContext(ctx, p.cfg, region, stack)
		if p.observer != nil {
			pctx.Observer = p.observer.WithFields(map[string]string{"stack": name})
		}
		if err := provisioning.RunPhases(pctx, p.Phases()); err != nil {
			return err
		}

		tmpl, err := app.Template(stack)
		if err != nil {
			return err
		}
		p.result.Template = tmpl
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return p.result, nil
}
