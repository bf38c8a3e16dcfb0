package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunParallel_Success(t *testing.T) {
	t.Parallel()
	var count atomic.Int32

	tasks := make([]Task, 0, 3)
	for _, name := range []string{"a", "b", "c"} {
		tasks = append(tasks, Task{Name: name, Func: func(_ context.Context) error {
			count.Add(1)
			return nil
		}})
	}

	require.NoError(t, RunParallel(context.Background(), tasks))
	assert.Equal(t, int32(3), count.Load())
}

func TestRunParallel_EmptyTasks(t *testing.T) {
	t.Parallel()
	require.NoError(t, RunParallel(context.Background(), nil))
	require.NoError(t, RunParallel(context.Background(), []Task{}))
}

func TestRunParallel_ErrorIsWrappedWithTaskName(t *testing.T) {
	t.Parallel()
	expected := errors.New("boom")

	err := RunParallel(context.Background(), []Task{
		{Name: "ok", Func: func(_ context.Context) error { return nil }},
		{Name: "failing", Func: func(_ context.Context) error { return expected }},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, expected)
	assert.Contains(t, err.Error(), "failing")
}

func TestRunParallel_WaitsForAllTasks(t *testing.T) {
	t.Parallel()
	var finished atomic.Bool

	err := RunParallel(context.Background(), []Task{
		{Name: "fast", Func: func(_ context.Context) error { return errors.New("fast failure") }},
		{Name: "slow", Func: func(_ context.Context) error {
			time.Sleep(20 * time.Millisecond)
			finished.Store(true)
			return nil
		}},
	})

	require.Error(t, err)
	assert.True(t, finished.Load(), "slow task should complete before RunParallel returns")
}
