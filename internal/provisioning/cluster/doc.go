// Package cluster declares one region's EKS cluster stack.
//
// The provisioner runs a fixed sequence of phases against a fresh
// CloudFormation template:
//
//  1. validation: configuration checks for the region
//  2. network: VPC, public and private subnets, NAT gateways
//  3. identity: admin, cluster service and node roles
//  4. cluster: EKS control plane, access entries, node groups
//  5. addons: the five cluster add-ons and the aws-node patch
//  6. deploy-identity: the role the release pipeline deploys with
//
// The result carries the rendered template together with the read-only
// cluster handle and deploy identity consumed by the workload deployer and
// the release pipeline.
package cluster
