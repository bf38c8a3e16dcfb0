package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/go-logr/logr"

	"github.com/imamik/mreks/internal/buildspec"
	"github.com/imamik/mreks/internal/pipeline"
	"github.com/imamik/mreks/internal/pipeline/actions"
	"github.com/imamik/mreks/internal/pipeline/sqlite"
	"github.com/imamik/mreks/internal/provisioning/release"
	"github.com/imamik/mreks/internal/topology"
	"github.com/imamik/mreks/internal/ui/tui"
)

// DefaultHistoryPath stores pipeline executions.
const DefaultHistoryPath = ".mreks/history.db"

// PipelineRunOptions configure a local pipeline run.
type PipelineRunOptions struct {
	ConfigPath string
	// SourceDir is the git checkout the source stage resolves.
	SourceDir string
	// Branch is resolved instead of HEAD when set.
	Branch string

	Approve  bool
	Reject   bool
	Approver string
	Comment  string

	DryRun bool
	// Dashboard renders the run as a terminal dashboard and takes the gate
	// decision there unless Approve or Reject is set.
	Dashboard   bool
	HistoryPath string
	MetricsFile string
}

// openStore opens the execution history (for testing injection).
var openStore = func(ctx context.Context, path string) (historyStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return sqlite.NewStore(ctx, path)
}

// historyStore is a closable execution store.
type historyStore interface {
	pipeline.Store
	Close() error
}

// confirmApproval asks on the terminal whether to release to target.
var confirmApproval = func(ctx context.Context, req pipeline.ApprovalRequest) (bool, error) {
	var approved bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Deploy %s to %s?", shortRevision(req.Revision), req.Target)).
				Description("The primary region has been updated. Approving releases to the second region.").
				Affirmative("Approve").
				Negative("Reject").
				Value(&approved),
		).Title("Approval"),
	).RunWithContext(ctx)
	return approved, err
}

// runDashboard runs a pipeline behind the terminal dashboard (for testing injection).
var runDashboard = func(ctx context.Context, name, approverName string, fixed pipeline.Approver, run tui.RunFunc) (*pipeline.Execution, error) {
	return tui.RunPipeline(ctx, name, approverName, fixed, run)
}

// PipelineRun runs the release pipeline locally, from source resolution to
// the secondary deploy.
func PipelineRun(ctx context.Context, opts PipelineRunOptions) (err error) {
	dashboard := opts.Dashboard && isInteractiveTTY()

	var approver pipeline.Approver
	if !dashboard || opts.Approve || opts.Reject {
		approver, err = chooseApprover(opts)
		if err != nil {
			return err
		}
	}

	cfg, err := loadResolved(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}
	rel, err := newComposer(cfg, logger).ComposeRelease(ctx)
	if err != nil {
		return err
	}

	// The dashboard owns the terminal; command output is replayed after it.
	out, errOut, runLog := stdout, stderr, logger
	var captured bytes.Buffer
	if dashboard {
		out, errOut, runLog = &captured, &captured, logr.Discard()
	}

	var runner actions.Runner = actions.ShellRunner{Stdout: out, Stderr: errOut}
	if opts.DryRun {
		runner = actions.DryRunRunner{Out: out}
	}
	def, err := newDefinition(cfg.Project, rel, opts, runner, runLog)
	if err != nil {
		return err
	}

	historyPath := opts.HistoryPath
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

	metrics := pipeline.NewMetrics()
	run := func(ctx context.Context, approver pipeline.Approver, observer pipeline.Observer) (*pipeline.Execution, error) {
		runOpts := []pipeline.RunnerOption{
			pipeline.WithStore(store),
			pipeline.WithMetrics(metrics),
			pipeline.WithLogger(runLog),
		}
		if observer != nil {
			runOpts = append(runOpts, pipeline.WithObserver(observer))
		}
		return pipeline.NewRunner(approver, runOpts...).Run(ctx, def)
	}

	var (
		exec   *pipeline.Execution
		runErr error
	)
	if dashboard {
		exec, runErr = runDashboard(ctx, cfg.Project, approverName(opts), approver, run)
		if _, err := captured.WriteTo(stdout); err != nil {
			runErr = errors.Join(runErr, err)
		}
	} else {
		exec, runErr = run(ctx, approver, nil)
	}

	printExecution(exec)

	if opts.MetricsFile != "" {
		if err := metrics.WriteTextfile(opts.MetricsFile); err != nil {
			return errors.Join(runErr, err)
		}
	}
	return runErr
}

func newDefinition(name string, rel *release.Result, opts PipelineRunOptions, runner actions.Runner, log logr.Logger) (*pipeline.Definition, error) {
	sourceDir := opts.SourceDir
	if sourceDir == "" {
		sourceDir = "."
	}

	deploy := func(logicalName string, t buildspec.DeployTarget, role topology.Role) pipeline.DeployTarget {
		return pipeline.DeployTarget{
			Region: t.Region,
			Label:  role.Label(),
			Action: &actions.Buildspec{
				Name:   logicalName,
				Spec:   buildspec.ClusterDeploy(t),
				Runner: runner,
				Dir:    sourceDir,
				Log:    log,
			},
		}
	}

	return pipeline.NewDefinition(name,
		actions.GitSource{Path: sourceDir, Branch: opts.Branch},
		&actions.Buildspec{Name: "BuildForECR", Spec: rel.ImageBuild, Runner: runner, Dir: sourceDir, Log: log},
		deploy("DeployToMainCluster", rel.PrimaryDeploy, topology.RolePrimary),
		deploy("DeployTo2ndCluster", rel.SecondaryDeploy, topology.RoleSecondary),
	)
}

func approverName(opts PipelineRunOptions) string {
	if opts.Approver != "" {
		return opts.Approver
	}
	return os.Getenv("USER")
}

func chooseApprover(opts PipelineRunOptions) (pipeline.Approver, error) {
	name := approverName(opts)

	switch {
	case opts.Approve && opts.Reject:
		return nil, errors.New("--approve and --reject are mutually exclusive")
	case opts.Approve:
		return pipeline.Approve(name), nil
	case opts.Reject:
		return pipeline.Reject(name, opts.Comment), nil
	case isInteractiveTTY():
		return pipeline.ApproverFunc(func(ctx context.Context, req pipeline.ApprovalRequest) (pipeline.Decision, error) {
			approved, err := confirmApproval(ctx, req)
			if err != nil {
				return pipeline.Decision{}, err
			}
			return pipeline.Decision{Approved: approved, Approver: name, Comment: opts.Comment}, nil
		}), nil
	default:
		return nil, errors.New("approval gate needs a decision: pass --approve or --reject when not on a terminal")
	}
}

func printExecution(exec *pipeline.Execution) {
	if exec == nil {
		return
	}
	status := okStyle.Render(string(exec.Status))
	if exec.Status != pipeline.StatusSucceeded {
		status = failStyle.Render(string(exec.Status))
	}

	printTitle(fmt.Sprintf("Pipeline %s %s", exec.Pipeline, status))
	printField("execution", exec.ID)
	printField("revision", shortRevision(exec.Revision))
	for _, s := range exec.Stages {
		line := fmt.Sprintf("%s %s", mark(s.Status == pipeline.StageSucceeded), s.Status)
		if s.Message != "" {
			line += " " + labelStyle.Render(s.Message)
		}
		if s.Error != "" {
			line += " " + failStyle.Render(s.Error)
		}
		fmt.Fprintf(stdout, "  %-16s %s\n", s.Stage, line)
	}
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	if rev == "" {
		return "-"
	}
	return rev
}
