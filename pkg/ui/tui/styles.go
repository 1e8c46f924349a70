package tui

import "github.com/charmbracelet/lipgloss"

// Palette after the Instagram gradient
var (
	pink    = lipgloss.Color("#E1306C")
	purple  = lipgloss.Color("#833AB4")
	orange  = lipgloss.Color("#F77737")
	gold    = lipgloss.Color("#FCAF45")
	green   = lipgloss.Color("#3DDC84")
	red     = lipgloss.Color("#ED4956")
	ink     = lipgloss.Color("#121212")
	panelBg = lipgloss.Color("#1E1E1E")
	muted   = lipgloss.Color("#A8A8A8")
	faint   = lipgloss.Color("#5E5E5E")
)

var (
	baseStyle = lipgloss.NewStyle().Background(ink).Foreground(muted)

	logoStyle = lipgloss.NewStyle().
			Foreground(pink).
			Bold(true).
			Padding(1, 0).
			Align(lipgloss.Center)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(purple).
			Background(panelBg).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Background(purple).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	statsLabelStyle = lipgloss.NewStyle().Foreground(pink).Bold(true)
	statsValueStyle = lipgloss.NewStyle().Foreground(gold)

	successStyle = lipgloss.NewStyle().Foreground(green).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(red).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(orange).Bold(true)

	activeItemStyle = lipgloss.NewStyle().Foreground(green).Bold(true)
	doneItemStyle   = lipgloss.NewStyle().Foreground(muted).Faint(true)

	logTimeStyle    = lipgloss.NewStyle().Foreground(faint)
	logMessageStyle = lipgloss.NewStyle().Foreground(muted)

	helpStyle = lipgloss.NewStyle().Foreground(faint).Padding(1, 0, 0, 2)
)
