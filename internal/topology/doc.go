// Package topology defines the two-region shape of a deployment.
//
// A [Regions] value always holds exactly one primary and one secondary
// [Region]. The role of a region is fixed when the configuration is resolved,
// so consumers never compare region strings to decide which is which.
//
// [ClusterHandle] and [DeployIdentity] are the values a regional provisioner
// hands to downstream consumers. Both are read-only.
package topology
