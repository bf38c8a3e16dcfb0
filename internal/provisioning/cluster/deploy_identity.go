package cluster

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/jsii-runtime-go"

	"github.com/imamik/mreks/internal/cfn"
	"github.com/imamik/mreks/internal/provisioning"
	"github.com/imamik/mreks/internal/topology"
	"github.com/imamik/mreks/internal/util/naming"
)

type deployIdentityPhase struct{}

func (p *deployIdentityPhase) Name() string { return "deploy-identity" }

func (p *deployIdentityPhase) Provision(ctx *provisioning.Context) error {
	cfg := ctx.Config

	var id string
	switch ctx.Region.Role {
	case topology.RolePrimary:
		id = "ForFirstRegionRole"
	case topology.RoleSecondary:
		id = "ForSecondRegionRole"
	default:
		return fmt.Errorf("region %s has no role", ctx.Region.Name)
	}

	roleName := naming.DeployRole(cfg.Project, ctx.Region.Name)
	var role awsiam.Role
	if err := ctx.Declare(p.Name(), "AWS::IAM::Role", id, func() {
		role = awsiam.NewRole(ctx.Stack, jsii.String(id), &awsiam.RoleProps{
			RoleName:  jsii.String(roleName),
			AssumedBy: awsiam.NewAccountPrincipal(jsii.String(cfg.AccountID)),
		})
	}); err != nil {
		return err
	}

	if err := declareAdminAccess(ctx, p.Name(), id+"AccessEntry", role.RoleArn()); err != nil {
		return err
	}

	identity, err := topology.NewDeployIdentity(ctx.Region, topology.Identity{
		RoleName:  roleName,
		RoleARN:   naming.RoleARN(cfg.AccountID, roleName),
		Region:    ctx.Region.Name,
		LogicalID: cfn.LogicalID(ctx.Stack, role),
	})
	if err != nil {
		return err
	}
	ctx.State.DeployIdentity = identity

	awscdk.Tags_Of(role).Add(jsii.String("deploy-identity"), jsii.String(identity.Label()), nil)
	ctx.Output("DeployRoleArn", role.RoleArn(), exportName(ctx, "DeployRoleArn"))
	ctx.Observer.Printf("Deploy identity %s exposed as %s", roleName, identity.Label())
	return nil
}
