// Package aws wraps the AWS APIs mreks calls directly: caller identity,
// artifact upload, cluster status and regional preflight checks.
//
// Declared infrastructure is never created through these clients; it is
// synthesized to templates and deployed by CloudFormation.
package aws
