package pipeline

import "context"

// ApprovalRequest describes what an approval unlocks.
type ApprovalRequest struct {
	ExecutionID string
	Pipeline    string
	Revision    string
	// Target is the region the next stage deploys to.
	Target string
}

// Decision is the answer to an approval request.
type Decision struct {
	Approved bool
	Approver string
	Comment  string
}

// Approver decides approval requests. Decide may block indefinitely; it
// should return when ctx is cancelled.
type Approver interface {
	Decide(ctx context.Context, req ApprovalRequest) (Decision, error)
}

// ApproverFunc adapts a function to the Approver interface.
type ApproverFunc func(ctx context.Context, req ApprovalRequest) (Decision, error)

// Decide implements Approver.
func (f ApproverFunc) Decide(ctx context.Context, req ApprovalRequest) (Decision, error) {
	return f(ctx, req)
}

// StaticApprover returns the same decision for every request.
type StaticApprover struct {
	Decision Decision
}

// Approve returns an approver that approves everything.
func Approve(approver string) StaticApprover {
	return StaticApprover{Decision: Decision{Approved: true, Approver: approver}}
}

// Reject returns an approver that rejects everything.
func Reject(approver, comment string) StaticApprover {
	return StaticApprover{Decision: Decision{Approver: approver, Comment: comment}}
}

// Decide implements Approver.
func (s StaticApprover) Decide(ctx context.Context, _ ApprovalRequest) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}
	return s.Decision, nil
}
