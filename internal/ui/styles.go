package ui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary = lipgloss.Color("39")
	ColorDim     = lipgloss.Color("241")
	ColorWarn    = lipgloss.Color("214")

	TitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	HeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	KeyStyle    = lipgloss.NewStyle().Padding(0, 1).Foreground(ColorDim)
	ValueStyle  = lipgloss.NewStyle().Padding(0, 1)
	WarnStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(ColorWarn)
	BorderStyle = lipgloss.NewStyle().Foreground(ColorDim)
)
