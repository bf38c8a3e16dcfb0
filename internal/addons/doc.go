// Package addons describes the cluster add-ons every regional cluster
// receives and installs them through Helm.
//
// The catalog is fixed: [ForCluster] always returns the same five releases
// (ingress controller, node autoscaler, container insights, network policy
// engine and monitoring) bound to one cluster. [Flux] describes the
// continuous-reconciliation add-on the workload deployer installs.
package addons
