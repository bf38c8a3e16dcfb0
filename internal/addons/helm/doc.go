// Package helm installs Helm charts into a cluster addressed by in-memory
// kubeconfig bytes.
//
// It includes the chart registry for every add-on mreks manages, a deep
// merging [Values] type, and a [Client] that installs a release or upgrades
// it when it already exists.
package helm
