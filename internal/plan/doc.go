// Package plan holds the explicit build plan: a DAG of named nodes and a
// topological executor.
//
// Nodes declare the IDs they depend on. [Plan.Order] groups nodes into levels
// where every node's dependencies sit in earlier levels. [Executor.Execute]
// runs the levels in order; nodes of the same level run concurrently and see
// the results of every completed node.
package plan
