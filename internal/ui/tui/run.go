package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/mreks/internal/pipeline"
)

// ErrAborted is returned when the dashboard is closed while the run is
// still in progress.
var ErrAborted = errors.New("pipeline dashboard closed")

// RunFunc runs a pipeline using the dashboard's approver and observer.
type RunFunc func(ctx context.Context, approver pipeline.Approver, observer pipeline.Observer) (*pipeline.Execution, error)

// RunPipeline renders run's progress. When ask is true the approval gate is
// decided in the dashboard and the decision is attributed to approverName;
// otherwise fixed decides it.
func RunPipeline(ctx context.Context, name, approverName string, fixed pipeline.Approver, run RunFunc, opts ...tea.ProgramOption) (*pipeline.Execution, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	decisions := make(chan pipeline.Decision, 1)
	p := tea.NewProgram(NewModel(name, decisions), append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)...)

	approver := fixed
	if approver == nil {
		approver = &dashboardApprover{send: p.Send, decisions: decisions, name: approverName}
	}

	type result struct {
		exec *pipeline.Execution
		err  error
	}
	done := make(chan result, 1)
	go func() {
		exec, err := run(ctx, approver, func(e pipeline.Execution) {
			p.Send(ExecutionMsg{Execution: e})
		})
		done <- result{exec, err}
		p.Send(DoneMsg{})
	}()

	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		cancel()
		<-done
		return nil, fmt.Errorf("TUI error: %w", err)
	}

	if fm, ok := final.(Model); ok && fm.Aborted {
		cancel()
		res := <-done
		return res.exec, errors.Join(ErrAborted, res.err)
	}

	res := <-done
	return res.exec, res.err
}

type dashboardApprover struct {
	send      func(tea.Msg)
	decisions <-chan pipeline.Decision
	name      string
}

// Decide implements pipeline.Approver.
func (a *dashboardApprover) Decide(ctx context.Context, req pipeline.ApprovalRequest) (pipeline.Decision, error) {
	a.send(ApprovalMsg{Request: req})
	select {
	case d := <-a.decisions:
		d.Approver = a.name
		return d, nil
	case <-ctx.Done():
		return pipeline.Decision{}, ctx.Err()
	}
}
