package provisioning

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awseks"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"

	"github.com/imamik/mreks/internal/addons"
	"github.com/imamik/mreks/internal/topology"
)

// State holds the shared results of provisioning phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results. Constructs belong to the
// context's stack.
type State struct {
	// Network results
	VPC awsec2.Vpc

	// Identity results
	AdminRole   awsiam.Role
	ClusterRole awsiam.Role
	NodeRole    awsiam.Role

	// Cluster results
	Cluster    awseks.CfnCluster
	NodeGroups []awseks.CfnNodegroup
	Handle     *topology.ClusterHandle

	// Add-on results
	Addons       []addons.Release
	AWSNodePatch []byte

	// Deploy identity bound as cluster administrator
	DeployIdentity topology.DeployIdentity
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{}
}
