package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/physlab/internal/dynamo"
)

type styles struct {
	title  lipgloss.Style
	sub    lipgloss.Style
	canvas lipgloss.Style
	panel  lipgloss.Style
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	active lipgloss.Style
	graph  lipgloss.Style
	help   lipgloss.Style
	status map[dynamo.Status]lipgloss.Style
}

func newStyles(t Theme) styles {
	badge := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Bold(true).Foreground(c)
	}
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(t.Title),
		sub:    lipgloss.NewStyle().Foreground(t.Muted),
		canvas: lipgloss.NewStyle().Foreground(t.Canvas).Padding(1, 2),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(panelWidth),
		header: lipgloss.NewStyle().Bold(true).Foreground(t.Accent).MarginTop(1),
		label:  lipgloss.NewStyle().Foreground(t.Muted),
		value:  lipgloss.NewStyle().Foreground(t.Text),
		active: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		graph:  lipgloss.NewStyle().Foreground(t.Canvas),
		help:   lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		status: map[dynamo.Status]lipgloss.Style{
			dynamo.StatusReady:   badge(t.Text),
			dynamo.StatusRunning: badge(t.Running),
			dynamo.StatusPaused:  badge(t.Paused),
			dynamo.StatusStopped: badge(t.Stopped),
		},
	}
}

// ProgressBar renders ratio in [0, 1] as a bar of width cells.
func ProgressBar(ratio float64, width int) string {
	filled := int(ratio*float64(width) + 0.5)
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
