package pipeline

import "context"

// ActionInput is passed to a stage action.
type ActionInput struct {
	ExecutionID string
	Stage       StageKind
	// Revision is the source revision resolved by the source stage. It is
	// empty while the source stage runs.
	Revision string
}

// ActionOutput is returned by a stage action.
type ActionOutput struct {
	// Revision is set by the source stage.
	Revision string
	Message  string
}

// Action executes one non-approval stage.
type Action interface {
	Run(ctx context.Context, in ActionInput) (ActionOutput, error)
}

// ActionFunc adapts a function to the Action interface.
type ActionFunc func(ctx context.Context, in ActionInput) (ActionOutput, error)

// Run implements Action.
func (f ActionFunc) Run(ctx context.Context, in ActionInput) (ActionOutput, error) {
	return f(ctx, in)
}
