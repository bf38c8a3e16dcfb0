package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// Runner executes pipeline definitions.
type Runner struct {
	approver Approver
	store    Store
	metrics  *Metrics
	observer Observer
	log      logr.Logger
	now      func() time.Time
	newID    func() string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithStore persists every state change of an execution.
func WithStore(s Store) RunnerOption {
	return func(r *Runner) { r.store = s }
}

// WithMetrics records stage outcomes.
func WithMetrics(m *Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// Observer is called with a snapshot of the execution after every state
// change. It runs on the runner's goroutine and must not block.
type Observer func(Execution)

// WithObserver reports state changes to o.
func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) { r.observer = o }
}

// WithLogger sets the runner's logger.
func WithLogger(log logr.Logger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

// withClock replaces time.Now.
func withClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a runner asking approver at the approval gate.
func NewRunner(approver Approver, opts ...RunnerOption) *Runner {
	r := &Runner{
		approver: approver,
		log:      logr.Discard(),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes def. It returns the execution record in every case; the error
// is a *StageError for a failed stage and wraps ErrApprovalRejected when the
// gate is rejected.
func (r *Runner) Run(ctx context.Context, def *Definition) (*Execution, error) {
	exec := &Execution{
		ID:        r.newID(),
		Pipeline:  def.Name(),
		Status:    StatusRunning,
		StartedAt: r.now(),
	}
	for _, kind := range def.Stages() {
		exec.Stages = append(exec.Stages, StageResult{Stage: kind, Status: StagePending})
	}
	log := r.log.WithValues("pipeline", def.Name(), "execution", exec.ID)
	r.save(ctx, exec)

	var runErr error
	for i := range exec.Stages {
		stage := &exec.Stages[i]

		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		stage.Status = StageRunning
		stage.StartedAt = r.now()
		r.save(ctx, exec)
		log.Info("stage started", "stage", stage.Stage)

		var err error
		if stage.Stage == StageApproveGate {
			err = r.approve(ctx, def, exec, stage)
		} else {
			err = r.runAction(ctx, def, exec, stage)
		}
		stage.FinishedAt = r.now()

		if err != nil {
			if stage.Status == StageRunning {
				stage.Status = StageFailed
			}
			stage.Error = err.Error()
			r.metrics.record(*stage)
			log.Error(err, "stage halted pipeline", "stage", stage.Stage, "status", stage.Status)
			runErr = &StageError{Stage: stage.Stage, Err: err}
			break
		}

		stage.Status = StageSucceeded
		r.metrics.record(*stage)
		log.Info("stage succeeded", "stage", stage.Stage, "duration", stage.Duration())
		r.save(ctx, exec)
	}

	for i := range exec.Stages {
		if exec.Stages[i].Status == StagePending {
			exec.Stages[i].Status = StageSkipped
		}
	}

	exec.FinishedAt = r.now()
	exec.Status = finalStatus(runErr)
	// Persist the final record even if ctx was cancelled.
	r.save(context.WithoutCancel(ctx), exec)

	log.Info("pipeline finished", "status", exec.Status, "duration", exec.FinishedAt.Sub(exec.StartedAt))
	return exec, runErr
}

func (r *Runner) runAction(ctx context.Context, def *Definition, exec *Execution, stage *StageResult) error {
	action := def.action(stage.Stage)
	if action == nil {
		return fmt.Errorf("no action for stage %s", stage.Stage)
	}

	out, err := action.Run(ctx, ActionInput{
		ExecutionID: exec.ID,
		Stage:       stage.Stage,
		Revision:    exec.Revision,
	})
	if err != nil {
		return err
	}

	stage.Message = out.Message
	if stage.Stage == StageSource {
		if out.Revision == "" {
			return errors.New("source stage resolved no revision")
		}
		exec.Revision = out.Revision
	}
	return nil
}

func (r *Runner) approve(ctx context.Context, def *Definition, exec *Execution, stage *StageResult) error {
	if r.approver == nil {
		return errors.New("no approver configured")
	}

	target, _ := def.Target(StageDeploySecondary)
	decision, err := r.approver.Decide(ctx, ApprovalRequest{
		ExecutionID: exec.ID,
		Pipeline:    def.Name(),
		Revision:    exec.Revision,
		Target:      target.Region,
	})
	if err != nil {
		return err
	}

	if decision.Approver != "" {
		stage.Message = "by " + decision.Approver
	}
	if decision.Comment != "" {
		stage.Message += ": " + decision.Comment
	}

	if !decision.Approved {
		stage.Status = StageRejected
		return ErrApprovalRejected
	}
	return nil
}

func (r *Runner) save(ctx context.Context, exec *Execution) {
	if r.observer != nil {
		r.observer(exec.snapshot())
	}
	if r.store == nil {
		return
	}
	if err := r.store.Save(ctx, exec); err != nil {
		r.log.Error(err, "failed to persist execution", "execution", exec.ID)
	}
}

func finalStatus(err error) Status {
	switch {
	case err == nil:
		return StatusSucceeded
	case errors.Is(err, ErrApprovalRejected):
		return StatusRejected
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCancelled
	default:
		return StatusFailed
	}
}
