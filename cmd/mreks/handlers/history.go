package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/imamik/mreks/internal/pipeline"
)

// PipelineHistory prints the latest executions, newest first. With id set it
// prints the stages of that execution instead; id may be an ID prefix.
func PipelineHistory(ctx context.Context, historyPath, id string, limit int) (err error) {
	if historyPath == "" {
		historyPath = DefaultHistoryPath
	}
	store, err := openStore(ctx, historyPath)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, closeStore(store))
	}()

	if id != "" {
		exec, err := store.Get(ctx, id)
		if err != nil {
			return err
		}
		printExecution(&exec)
		printField("executed", executedStages(exec))
		printField("duration", runDuration(exec))
		return nil
	}

	runs, err := store.List(ctx, limit)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(stdout)
	table.SetHeader([]string{"Execution", "Status", "Revision", "Started", "Duration", "Stopped at"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for _, e := range runs {
		table.Append([]string{
			e.ID[:min(8, len(e.ID))],
			string(e.Status),
			shortRevision(e.Revision),
			e.StartedAt.Local().Format(time.DateTime),
			runDuration(e),
			haltedAt(e),
		})
	}
	table.Render()
	return nil
}

func executedStages(e pipeline.Execution) string {
	kinds := e.Executed()
	if len(kinds) == 0 {
		return "-"
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, " → ")
}

func closeStore(store historyStore) error {
	if err := store.Close(); err != nil {
		return fmt.Errorf("failed to close execution history: %w", err)
	}
	return nil
}

func runDuration(e pipeline.Execution) string {
	if e.FinishedAt.IsZero() {
		return "running"
	}
	return e.FinishedAt.Sub(e.StartedAt).Round(time.Second).String()
}

// haltedAt names the stage that stopped the execution.
func haltedAt(e pipeline.Execution) string {
	var out []string
	for _, s := range e.Stages {
		switch s.Status {
		case pipeline.StageFailed, pipeline.StageRejected:
			out = append(out, s.Stage.String())
		}
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ",")
}
