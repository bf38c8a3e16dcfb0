package topology

// ClusterHandle references a declared EKS cluster.
// It is produced by the regional provisioner and only read by consumers.
type ClusterHandle struct {
	// Name is the EKS cluster name.
	Name string
	// Region is the region the cluster lives in.
	Region Region
	// Account is the AWS account ID owning the cluster.
	Account string
	// StackName is the name of the stack declaring the cluster.
	StackName string
	// ARN is the cluster ARN.
	ARN string
	// AdminRoleARN is the ARN of the cluster's administrative role.
	AdminRoleARN string
	// VPCLogicalID is the logical ID of the VPC inside the cluster stack.
	VPCLogicalID string
	// LogicalID is the logical ID of the cluster resource inside the stack.
	LogicalID string
}
