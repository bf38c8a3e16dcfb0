// Package actions provides the stage actions of the release pipeline: a git
// source that resolves the revision to release and buildspec actions that
// run the image build and the cluster deploys.
package actions
