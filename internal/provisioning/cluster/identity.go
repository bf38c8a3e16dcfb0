package cluster

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/jsii-runtime-go"

	"github.com/imamik/mreks/internal/provisioning"
	"github.com/imamik/mreks/internal/util/naming"
)

// AdminManagedPolicies are attached to the cluster admin role.
var AdminManagedPolicies = []string{
	"AmazonEKS_CNI_Policy",
	"AmazonSSMManagedInstanceCore",
	"AmazonEKSWorkerNodePolicy",
	"AmazonEC2ContainerRegistryReadOnly",
}

var nodeManagedPolicies = []string{
	"AmazonEKSWorkerNodePolicy",
	"AmazonEKS_CNI_Policy",
	"AmazonEC2ContainerRegistryReadOnly",
}

const (
	adminRoleID   = "EKSAdminRole"
	clusterRoleID = "ClusterServiceRole"
	nodeRoleID    = "NodeRole"
)

type identityPhase struct{}

func (p *identityPhase) Name() string { return "identity" }

func (p *identityPhase) Provision(ctx *provisioning.Context) error {
	cfg := ctx.Config
	state := ctx.State

	// The admin role gets a fixed name so its ARN is known before the
	// stack exists; the aws-node patch and the cluster handle both need it.
	if err := ctx.Declare(p.Name(), "AWS::IAM::Role", adminRoleID, func() {
		state.AdminRole = awsiam.NewRole(ctx.Stack, jsii.String(adminRoleID), &awsiam.RoleProps{
			RoleName:        jsii.String(naming.AdminRole(cfg.Project, ctx.Region.Name)),
			AssumedBy:       awsiam.NewAccountPrincipal(jsii.String(cfg.AccountID)),
			ManagedPolicies: managedPolicies(AdminManagedPolicies),
		})
	}); err != nil {
		return err
	}

	if err := ctx.Declare(p.Name(), "AWS::IAM::Role", clusterRoleID, func() {
		state.ClusterRole = awsiam.NewRole(ctx.Stack, jsii.String(clusterRoleID), &awsiam.RoleProps{
			AssumedBy:       awsiam.NewServicePrincipal(jsii.String("eks.amazonaws.com"), nil),
			ManagedPolicies: managedPolicies([]string{"AmazonEKSClusterPolicy"}),
		})
	}); err != nil {
		return err
	}

	return ctx.Declare(p.Name(), "AWS::IAM::Role", nodeRoleID, func() {
		state.NodeRole = awsiam.NewRole(ctx.Stack, jsii.String(nodeRoleID), &awsiam.RoleProps{
			AssumedBy:       awsiam.NewServicePrincipal(jsii.String("ec2.amazonaws.com"), nil),
			ManagedPolicies: managedPolicies(nodeManagedPolicies),
		})
	})
}

func managedPolicies(names []string) *[]awsiam.IManagedPolicy {
	policies := make([]awsiam.IManagedPolicy, len(names))
	for i, n := range names {
		policies[i] = awsiam.ManagedPolicy_FromAwsManagedPolicyName(jsii.String(n))
	}
	return &policies
}
