package pipeline

import (
	"time"
)

// Status is the outcome of an execution.
type Status string

// Execution statuses.
const (
	StatusRunning   Status = "Running"
	StatusSucceeded Status = "Succeeded"
	StatusFailed    Status = "Failed"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

// StageStatus is the state of one stage within an execution.
type StageStatus string

// Stage states. A stage moves from Pending to Running and then to one of
// the terminal states; stages after a halt move from Pending to Skipped.
const (
	StagePending   StageStatus = "Pending"
	StageRunning   StageStatus = "Running"
	StageSucceeded StageStatus = "Succeeded"
	StageFailed    StageStatus = "Failed"
	StageRejected  StageStatus = "Rejected"
	StageSkipped   StageStatus = "Skipped"
)

// Terminal reports whether no further transition is possible.
func (s StageStatus) Terminal() bool {
	switch s {
	case StageSucceeded, StageFailed, StageRejected, StageSkipped:
		return true
	default:
		return false
	}
}

// StageResult records one stage of an execution.
type StageResult struct {
	Stage      StageKind
	Status     StageStatus
	StartedAt  time.Time
	FinishedAt time.Time
	Message    string
	Error      string
}

// Duration returns how long the stage ran.
func (r StageResult) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Execution is one run of a pipeline.
type Execution struct {
	ID         string
	Pipeline   string
	Status     Status
	Revision   string
	StartedAt  time.Time
	FinishedAt time.Time
	Stages     []StageResult
}

// Stage returns the result of kind.
func (e *Execution) Stage(kind StageKind) (StageResult, bool) {
	for _, s := range e.Stages {
		if s.Stage == kind {
			return s, true
		}
	}
	return StageResult{}, false
}

// Executed returns the stages that ran, in order.
func (e *Execution) Executed() []StageKind {
	var out []StageKind
	for _, s := range e.Stages {
		if s.Status != StagePending && s.Status != StageSkipped {
			out = append(out, s.Stage)
		}
	}
	return out
}

func (e *Execution) snapshot() Execution {
	c := *e
	c.Stages = append([]StageResult(nil), e.Stages...)
	return c
}
