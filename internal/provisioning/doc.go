// Package provisioning provides shared types and interfaces for declaring
// regional infrastructure.
//
// The provisioning domain is organized into focused subpackages:
//   - cluster/: network, identity, EKS cluster, add-ons and deploy identity for one region
//   - workload/: manifest sets and the reconciliation add-on applied to a cluster
//   - release/: the release pipeline stack spanning both regions
//
// This root package contains the phase runner, the declaration context and
// the observer used across subpackages.
package provisioning
