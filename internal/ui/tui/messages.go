// Package tui provides a Bubble Tea dashboard for release pipeline runs.
package tui

import "github.com/imamik/mreks/internal/pipeline"

// ExecutionMsg carries the latest snapshot of the running execution.
type ExecutionMsg struct {
	Execution pipeline.Execution
}

// ApprovalMsg asks the dashboard to collect a gate decision.
type ApprovalMsg struct {
	Request pipeline.ApprovalRequest
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }

// DoneMsg signals that the run has returned.
type DoneMsg struct{}
