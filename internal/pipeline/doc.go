// Package pipeline runs the release sequence locally.
//
// A [Definition] holds the five stages in their fixed order: Source, Build,
// DeployPrimary, ApproveGate and DeploySecondary. [Runner] walks them as a
// linear state machine. A failing stage halts the run and every later stage
// is recorded as skipped; nothing is retried or rolled back. The approval
// gate waits on an [Approver] with no timeout of its own, so only context
// cancellation ends an unanswered gate.
package pipeline
