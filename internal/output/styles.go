package output

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	colorRed    = lipgloss.Color("#ff5555")
	colorOrange = lipgloss.Color("#ffb86c")
	colorYellow = lipgloss.Color("#f1fa8c")
	colorBlue   = lipgloss.Color("#8be9fd")
	colorGreen  = lipgloss.Color("#50fa7b")
	colorDim    = lipgloss.Color("#6272a4")
)

// Style definitions.
var (
	highStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	mediumStyle = lipgloss.NewStyle().Foreground(colorOrange).Bold(true)
	lowStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	infoStyle   = lipgloss.NewStyle().Foreground(colorBlue)

	headerStyle = lipgloss.NewStyle().Bold(true)
	cleanStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)
