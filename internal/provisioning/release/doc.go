// Package release declares the CicdStack: a source repository, an image
// repository, the build and deploy projects and a five-stage CodePipeline
// rolling a release to the primary cluster, through a manual approval, and
// on to the secondary cluster.
package release
