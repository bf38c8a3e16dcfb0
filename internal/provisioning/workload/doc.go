// Package workload applies a region's workload manifests and the Flux
// reconciliation add-on to a provisioned cluster.
//
// Manifests are loaded from the common directory first and the
// region-specific directory second. The order is kept through application,
// so on overlapping objects the region-specific definition wins.
package workload
