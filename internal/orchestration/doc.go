// Package orchestration composes the whole deployment.
//
// [Composer] builds an explicit build plan with one node per stack:
//
//	cluster/<primary>    cluster/<secondary>
//	      |         \   /        |
//	workloads/<p>  release  workloads/<s>
//
// The plan executor declares both cluster stacks concurrently, then the
// workload bundles and the release pipeline once their clusters exist. The
// resulting [Assembly] can be written to disk as CloudFormation templates
// plus the cluster-side bundles.
package orchestration
