// Package k8sclient applies Kubernetes manifests to a cluster with
// Server-Side Apply, working directly from kubeconfig bytes or a REST
// config without touching the local kubeconfig file.
package k8sclient
