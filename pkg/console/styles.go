package console

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/jobdesk/internal/grid"
)

var (
	primaryColor = lipgloss.Color("212")
	successColor = lipgloss.Color("42")
	warningColor = lipgloss.Color("214")
	errorColor   = lipgloss.Color("196")
	infoColor    = lipgloss.Color("45")
	mutedColor   = lipgloss.Color("241")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle = lipgloss.NewStyle().Foreground(errorColor)

	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("250"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).
			Foreground(lipgloss.Color("255")).Background(lipgloss.Color("57"))

	headerStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	focusedHeaderStyle = headerStyle.Underline(true).Foreground(primaryColor)

	cursorRowStyle   = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	selectedRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	actionStyle      = lipgloss.NewStyle().Foreground(infoColor)

	currentPageStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(primaryColor)
	pageStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	formBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).Padding(1, 2)
)

var toneStyles = map[grid.Tone]lipgloss.Style{
	grid.ToneSuccess: lipgloss.NewStyle().Foreground(successColor),
	grid.ToneWarning: lipgloss.NewStyle().Foreground(warningColor),
	grid.ToneDanger:  lipgloss.NewStyle().Foreground(errorColor),
	grid.ToneInfo:    lipgloss.NewStyle().Foreground(infoColor),
	grid.ToneNeutral: mutedStyle,
}

// cellStyle returns the style of a rendered cell.
func cellStyle(c grid.Cell) lipgloss.Style {
	if c.Empty {
		return mutedStyle
	}
	if c.Kind == grid.DisplayBadge {
		if st, ok := toneStyles[c.Tone]; ok {
			return st
		}
	}
	return lipgloss.NewStyle()
}
