package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

const (
	colorText   lipgloss.Color = "#cdd6f4"
	colorMuted  lipgloss.Color = "#6c7086"
	colorAccent lipgloss.Color = "#cba6f7"
	colorGreen  lipgloss.Color = "#a6e3a1"
	colorYellow lipgloss.Color = "#f9e2af"
	colorRed    lipgloss.Color = "#f38ba8"
	colorBlue   lipgloss.Color = "#89b4fa"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	tagStyle    = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
)

func stateStyle(s types.State) lipgloss.Style {
	switch s {
	case types.StateActive:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case types.StatePaused:
		return lipgloss.NewStyle().Foreground(colorYellow)
	case types.StateDestroyed:
		return lipgloss.NewStyle().Foreground(colorRed)
	default:
		return lipgloss.NewStyle().Foreground(colorBlue)
	}
}
