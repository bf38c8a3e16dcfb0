package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/mreks/internal/pipeline"
)

// styleFunc is a single-string styling function.
type styleFunc func(string) string

func sf(s lipgloss.Style) styleFunc {
	return func(str string) string { return s.Render(str) }
}

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)
	renderProgressBar(&b, m)
	renderStages(&b, m)

	if m.Pending != nil {
		renderPrompt(&b, *m.Pending)
	}

	renderFooter(&b, m)
	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	b.WriteString(titleStyle.Render("mreks: " + m.Pipeline))

	status := " "
	switch {
	case m.Err != nil:
		status += failedStyle.Render(fmt.Sprintf("Error: %v", m.Err))
	case m.Execution.Status == pipeline.StatusSucceeded:
		status += readyStyle.Render(string(m.Execution.Status))
	case m.Execution.Status == pipeline.StatusFailed,
		m.Execution.Status == pipeline.StatusRejected,
		m.Execution.Status == pipeline.StatusCancelled:
		status += failedStyle.Render(string(m.Execution.Status))
	case m.Pending != nil:
		status += warningStyle.Render("Waiting for approval")
	case m.Execution.Status == pipeline.StatusRunning:
		status += activeStyle.Render(currentSpinner(m.SpinnerFrame)+" ") + warningStyle.Render("Running")
	default:
		status += dimStyle.Render("Starting...")
	}
	b.WriteString(status)
	b.WriteString("\n")

	if m.Execution.ID != "" {
		rev := m.Execution.Revision
		if len(rev) > 7 {
			rev = rev[:7]
		}
		if rev == "" {
			rev = "-"
		}
		fmt.Fprintf(b, "%s\n", subtitleStyle.Render(fmt.Sprintf("  execution %s  revision %s", m.Execution.ID, rev)))
	}
}

func renderProgressBar(b *strings.Builder, m Model) {
	barWidth := 40
	if m.Width > 0 && m.Width < 80 {
		barWidth = max(m.Width-30, 10)
	}
	filled := min(int(float64(barWidth)*m.Progress()), barWidth)

	bar := progressBarFull.Render(strings.Repeat("█", filled)) +
		progressBarEmpty.Render(strings.Repeat("░", barWidth-filled))
	fmt.Fprintf(b, "  %s %d%%\n", bar, int(m.Progress()*100))
}

func renderStages(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Stages"))
	b.WriteString("\n")

	for _, s := range m.Execution.Stages {
		icon, style := stageIcon(s.Status, m.SpinnerFrame)
		if s.Stage == pipeline.StageApproveGate && m.Pending != nil {
			icon, style = waitMark, sf(warningStyle)
		}

		line := fmt.Sprintf("    %s %-16s", style(icon), style(s.Stage.String()))
		if d := stageDuration(s); d > 0 {
			line += " " + dimStyle.Render(formatDuration(d))
		}
		if s.Message != "" {
			line += " " + dimStyle.Render(s.Message)
		}
		if s.Error != "" {
			line += " " + failedStyle.Render(s.Error)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func renderPrompt(b *strings.Builder, req pipeline.ApprovalRequest) {
	rev := req.Revision
	if len(rev) > 7 {
		rev = rev[:7]
	}
	body := fmt.Sprintf("Deploy %s to %s?\n%s", rev, req.Target,
		dimStyle.Render("y approve  n reject"))
	b.WriteString(promptStyle.Render(body))
	b.WriteString("\n")
}

func renderFooter(b *strings.Builder, m Model) {
	elapsed := formatDuration(time.Since(m.StartTime))
	b.WriteString(footerStyle.Render(fmt.Sprintf("  elapsed %s  |  q quit", elapsed)))
	b.WriteString("\n")
}

func stageIcon(status pipeline.StageStatus, frame int) (string, styleFunc) {
	switch status {
	case pipeline.StageSucceeded:
		return checkMark, sf(readyStyle)
	case pipeline.StageFailed, pipeline.StageRejected:
		return crossMark, sf(failedStyle)
	case pipeline.StageSkipped:
		return skipMark, sf(dimStyle)
	case pipeline.StageRunning:
		return currentSpinner(frame), sf(activeStyle)
	default:
		return pending, sf(dimStyle)
	}
}

func stageDuration(s pipeline.StageResult) time.Duration {
	if s.Status == pipeline.StageRunning && !s.StartedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.Duration()
}

func currentSpinner(frame int) string {
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
