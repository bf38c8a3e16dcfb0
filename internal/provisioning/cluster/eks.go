package cluster

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awseks"
	"github.com/aws/jsii-runtime-go"

	"github.com/imamik/mreks/internal/cfn"
	"github.com/imamik/mreks/internal/config"
	"github.com/imamik/mreks/internal/provisioning"
	"github.com/imamik/mreks/internal/topology"
	"github.com/imamik/mreks/internal/util/naming"
)

// LoggingTypes are the control plane log streams enabled on every cluster.
var LoggingTypes = []string{"api", "authenticator", "scheduler"}

// ClusterAdminPolicyARN is the EKS access policy granting cluster-admin.
const ClusterAdminPolicyARN = "arn:aws:eks::aws:cluster-access-policy/AmazonEKSClusterAdminPolicy"

// SpotNodeGroup names the interchangeable-shape worker pool.
const SpotNodeGroup = "spot-ng"

type eksPhase struct{}

func (p *eksPhase) Name() string { return "cluster" }

func (p *eksPhase) Provision(ctx *provisioning.Context) error {
	cfg := ctx.Config
	state := ctx.State
	clusterID := naming.LogicalID(cfg.Cluster.Name, "cluster")

	logging := make([]any, len(LoggingTypes))
	for i, t := range LoggingTypes {
		logging[i] = &awseks.CfnCluster_LoggingTypeConfigProperty{Type: jsii.String(t)}
	}

	if err := ctx.Declare(p.Name(), "AWS::EKS::Cluster", clusterID, func() {
		state.Cluster = awseks.NewCfnCluster(ctx.Stack, jsii.String(clusterID), &awseks.CfnClusterProps{
			Name:    jsii.String(cfg.Cluster.Name),
			Version: jsii.String(cfg.Cluster.KubernetesVersion),
			RoleArn: state.ClusterRole.RoleArn(),
			ResourcesVpcConfig: &awseks.CfnCluster_ResourcesVpcConfigProperty{
				SubnetIds:             subnetIDs(state.VPC.PrivateSubnets()),
				EndpointPublicAccess:  jsii.Bool(true),
				EndpointPrivateAccess: jsii.Bool(true),
			},
			Logging: &awseks.CfnCluster_LoggingProperty{
				ClusterLogging: &awseks.CfnCluster_ClusterLoggingProperty{EnabledTypes: &logging},
			},
			AccessConfig: &awseks.CfnCluster_AccessConfigProperty{
				AuthenticationMode:                      jsii.String("API_AND_CONFIG_MAP"),
				BootstrapClusterCreatorAdminPermissions: jsii.Bool(true),
			},
		})
	}); err != nil {
		return err
	}

	if err := declareAdminAccess(ctx, p.Name(), "EKSAdminAccessEntry", state.AdminRole.RoleArn()); err != nil {
		return err
	}

	if n := cfg.Cluster.DefaultNodeCount(); n > 0 {
		if err := p.declareNodeGroup(ctx, "default", config.WorkerPool{
			MinSize:       n,
			MaxSize:       n,
			DesiredSize:   n,
			InstanceTypes: []string{cfg.Cluster.DefaultInstanceType},
			CapacityType:  config.CapacityOnDemand,
		}); err != nil {
			return err
		}
	}

	if err := p.declareNodeGroup(ctx, SpotNodeGroup, cfg.Cluster.Workers); err != nil {
		return err
	}

	stack := naming.ClusterStack(ctx.Region.Name)
	adminRoleName := naming.AdminRole(cfg.Project, ctx.Region.Name)
	state.Handle = &topology.ClusterHandle{
		Name:         cfg.Cluster.Name,
		Region:       ctx.Region,
		Account:      cfg.AccountID,
		StackName:    stack,
		ARN:          naming.ClusterARN(cfg.AccountID, ctx.Region.Name, cfg.Cluster.Name),
		AdminRoleARN: naming.RoleARN(cfg.AccountID, adminRoleName),
		VPCLogicalID: cfn.LogicalID(ctx.Stack, state.VPC),
		LogicalID:    cfn.LogicalID(ctx.Stack, state.Cluster),
	}

	ctx.Output("ClusterName", state.Cluster.Ref(), exportName(ctx, "ClusterName"))
	ctx.Output("ClusterArn", state.Cluster.AttrArn(), exportName(ctx, "ClusterArn"))
	ctx.Output("ClusterEndpoint", state.Cluster.AttrEndpoint(), "")
	ctx.Output("AdminRoleArn", state.AdminRole.RoleArn(), exportName(ctx, "AdminRoleArn"))
	ctx.Output("VpcId", state.VPC.VpcId(), exportName(ctx, "VpcId"))
	return nil
}

func (p *eksPhase) declareNodeGroup(ctx *provisioning.Context, pool string, w config.WorkerPool) error {
	cluster := ctx.Config.Cluster.Name
	state := ctx.State
	id := naming.LogicalID(pool, "nodegroup")

	return ctx.Declare(p.Name(), "AWS::EKS::Nodegroup", id, func() {
		ng := awseks.NewCfnNodegroup(ctx.Stack, jsii.String(id), &awseks.CfnNodegroupProps{
			ClusterName:   state.Cluster.Ref(),
			NodegroupName: jsii.String(naming.NodeGroup(cluster, pool)),
			NodeRole:      state.NodeRole.RoleArn(),
			Subnets:       subnetIDs(state.VPC.PrivateSubnets()),
			InstanceTypes: jsii.Strings(w.InstanceTypes...),
			CapacityType:  jsii.String(w.CapacityType),
			ScalingConfig: &awseks.CfnNodegroup_ScalingConfigProperty{
				MinSize:     jsii.Number(w.MinSize),
				MaxSize:     jsii.Number(w.MaxSize),
				DesiredSize: jsii.Number(w.DesiredSize),
			},
			Labels: &map[string]*string{"pool": jsii.String(pool)},
			Tags: &map[string]*string{
				"k8s.io/cluster-autoscaler/enabled":    jsii.String("true"),
				"k8s.io/cluster-autoscaler/" + cluster: jsii.String("owned"),
			},
		})
		state.NodeGroups = append(state.NodeGroups, ng)
	})
}

// declareAdminAccess grants principal cluster-admin through an access entry.
func declareAdminAccess(ctx *provisioning.Context, phase, id string, principal *string) error {
	return ctx.Declare(phase, "AWS::EKS::AccessEntry", id, func() {
		awseks.NewCfnAccessEntry(ctx.Stack, jsii.String(id), &awseks.CfnAccessEntryProps{
			ClusterName:  ctx.State.Cluster.Ref(),
			PrincipalArn: principal,
			AccessPolicies: &[]any{&awseks.CfnAccessEntry_AccessPolicyProperty{
				PolicyArn:   jsii.String(ClusterAdminPolicyARN),
				AccessScope: &awseks.CfnAccessEntry_AccessScopeProperty{Type: jsii.String("cluster")},
			}},
		})
	})
}
