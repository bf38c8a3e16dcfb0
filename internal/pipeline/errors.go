package pipeline

import (
	"errors"
	"fmt"
)

// ErrApprovalRejected is returned when the approval gate is rejected.
var ErrApprovalRejected = errors.New("approval rejected")

// ErrExecutionNotFound is returned when no stored execution matches an ID.
var ErrExecutionNotFound = errors.New("execution not found")

// ErrAmbiguousExecution is returned when an ID prefix matches several executions.
var ErrAmbiguousExecution = errors.New("execution ID prefix is ambiguous")

// StageError reports the stage a run halted at.
type StageError struct {
	Stage StageKind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
