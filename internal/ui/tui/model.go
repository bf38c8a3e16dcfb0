package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/mreks/internal/pipeline"
)

// Model is the Bubble Tea model for the pipeline dashboard.
type Model struct {
	Pipeline  string
	Execution pipeline.Execution

	// Pending is the approval request awaiting a key press.
	Pending *pipeline.ApprovalRequest
	// Decided is the last gate decision taken in the dashboard.
	Decided *pipeline.Decision

	decisions chan<- pipeline.Decision

	StartTime    time.Time
	SpinnerFrame int

	Width  int
	Height int
	Err    error
	Done   bool
	// Aborted is set when the user quits before the run returned.
	Aborted bool
}

// NewModel creates a dashboard for the named pipeline. Gate decisions are
// written to decisions, which must have room for one value.
func NewModel(name string, decisions chan<- pipeline.Decision) Model {
	m := Model{
		Pipeline:  name,
		decisions: decisions,
		StartTime: time.Now(),
	}
	for _, kind := range pipeline.Stages() {
		m.Execution.Stages = append(m.Execution.Stages, pipeline.StageResult{Stage: kind, Status: pipeline.StagePending})
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case ExecutionMsg:
		m.Execution = msg.Execution

	case ApprovalMsg:
		req := msg.Request
		m.Pending = &req

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		m.Done = true
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.Aborted = true
		return m, tea.Quit
	case "y", "Y":
		if m.Pending != nil {
			m.decide(true)
		}
	case "n", "N":
		if m.Pending != nil {
			m.decide(false)
		}
	}
	return m, nil
}

func (m *Model) decide(approved bool) {
	d := pipeline.Decision{Approved: approved}
	m.Decided = &d
	m.Pending = nil
	select {
	case m.decisions <- d:
	default:
	}
}

// Progress returns the share of stages in a terminal state.
func (m Model) Progress() float64 {
	if len(m.Execution.Stages) == 0 {
		return 0
	}
	var done int
	for _, s := range m.Execution.Stages {
		if s.Status.Terminal() {
			done++
		}
	}
	return float64(done) / float64(len(m.Execution.Stages))
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
