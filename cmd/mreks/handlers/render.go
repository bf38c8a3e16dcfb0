package handlers

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorRed   = lipgloss.Color("#ef4444")
	colorBlue  = lipgloss.Color("#3b82f6")
	colorDim   = lipgloss.Color("#6b7280")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f9fafb"))
	labelStyle = lipgloss.NewStyle().Foreground(colorDim)
	valueStyle = lipgloss.NewStyle().Foreground(colorBlue)
	okStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	failStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

func printTitle(title string) {
	fmt.Fprintln(stdout, titleStyle.Render(title))
}

func printField(label string, value any) {
	fmt.Fprintf(stdout, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", label)), valueStyle.Render(fmt.Sprint(value)))
}

func mark(ok bool) string {
	if ok {
		return okStyle.Render("✓")
	}
	return failStyle.Render("✗")
}
