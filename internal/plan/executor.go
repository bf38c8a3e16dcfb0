package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/mreks/internal/util/async"
)

// Executor runs a plan level by level.
type Executor struct {
	log logr.Logger
}

// NewExecutor creates an executor that logs through log.
func NewExecutor(log logr.Logger) *Executor {
	return &Executor{log: log}
}

// Execute runs every node of p. Nodes of one level run concurrently and a
// level starts only after the previous one fully succeeded. The first failing
// level stops execution; results of nodes that completed are still returned.
func (e *Executor) Execute(ctx context.Context, p *Plan) (*Results, error) {
	levels, err := p.Order()
	if err != nil {
		return nil, err
	}

	results := NewResults()
	for i, level := range levels {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("plan cancelled before level %d: %w", i, err)
		}

		e.log.V(1).Info("executing plan level", "level", i, "nodes", level)

		// Nodes of this level see only earlier levels, never their siblings.
		deps := results.Clone()

		tasks := make([]async.Task, 0, len(level))
		for _, id := range level {
			node := p.nodes[id]
			tasks = append(tasks, async.Task{
				Name: id,
				Func: func(ctx context.Context) error {
					start := time.Now()
					v, err := node.Run(ctx, deps)
					if err != nil {
						e.log.Error(err, "plan node failed", "node", node.ID)
						return err
					}
					results.set(node.ID, v)
					e.log.Info("plan node completed", "node", node.ID, "duration", time.Since(start).Round(time.Millisecond))
					return nil
				},
			})
		}

		if err := async.RunParallel(ctx, tasks); err != nil {
			return results, fmt.Errorf("plan level %d: %w", i, err)
		}
	}

	return results, nil
}
