package actions

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"

	"github.com/go-logr/logr"

	"github.com/imamik/mreks/internal/buildspec"
	"github.com/imamik/mreks/internal/pipeline"
)

// Command is one buildspec command ready to run.
type Command struct {
	Line string
	// Env holds KEY=value pairs added to the environment.
	Env []string
	Dir string
}

// Runner runs buildspec commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// Buildspec runs the commands of a buildspec in order and stops at the first
// failing command.
type Buildspec struct {
	Name   string
	Spec   buildspec.Spec
	Runner Runner
	// Dir is the working directory, usually the source checkout.
	Dir string
	Log logr.Logger
}

var _ pipeline.Action = (*Buildspec)(nil)

// Run implements pipeline.Action. The input revision is exported as the
// resolved source version.
func (b *Buildspec) Run(ctx context.Context, in pipeline.ActionInput) (pipeline.ActionOutput, error) {
	if err := b.Spec.Validate(); err != nil {
		return pipeline.ActionOutput{}, fmt.Errorf("%s: %w", b.Name, err)
	}
	if b.Runner == nil {
		return pipeline.ActionOutput{}, fmt.Errorf("%s: no command runner", b.Name)
	}

	env := specEnv(b.Spec, in.Revision)
	commands := b.Spec.Commands()
	for i, line := range commands {
		if err := ctx.Err(); err != nil {
			return pipeline.ActionOutput{}, err
		}
		b.Log.V(1).Info("running command", "action", b.Name, "step", i+1, "command", line)
		if err := b.Runner.Run(ctx, Command{Line: line, Env: env, Dir: b.Dir}); err != nil {
			return pipeline.ActionOutput{}, fmt.Errorf("%s command %d (%s): %w", b.Name, i+1, line, err)
		}
	}

	return pipeline.ActionOutput{Message: fmt.Sprintf("%s: %d commands", b.Name, len(commands))}, nil
}

func specEnv(spec buildspec.Spec, revision string) []string {
	keys := make([]string, 0, len(spec.Env.Variables))
	for k := range spec.Env.Variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		env = append(env, k+"="+spec.Env.Variables[k])
	}
	if revision != "" {
		env = append(env, buildspec.SourceVersionVar+"="+revision)
	}
	return env
}

// ShellRunner runs each command with sh -c.
type ShellRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run implements Runner.
func (r ShellRunner) Run(ctx context.Context, cmd Command) error {
	c := exec.CommandContext(ctx, "sh", "-c", cmd.Line)
	c.Dir = cmd.Dir
	c.Env = append(os.Environ(), cmd.Env...)
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr
	return c.Run()
}

// DryRunRunner prints commands instead of running them.
type DryRunRunner struct {
	Out io.Writer
}

// Run implements Runner.
func (r DryRunRunner) Run(ctx context.Context, cmd Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Out == nil {
		return nil
	}
	_, err := fmt.Fprintf(r.Out, "+ %s\n", cmd.Line)
	return err
}
