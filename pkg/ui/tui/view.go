package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"igsaved/pkg/archive"
)

// View renders the entire TUI
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, m.renderLogo())

	leftColumn := m.renderLeftColumn()
	rightColumn := m.renderRightColumn()
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, leftColumn, "  ", rightColumn))

	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else {
		sections = append(sections, helpStyle.Render("q: stop after current post • ?: help"))
	}

	return baseStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

func (m *Model) renderLogo() string {
	logo := `
╔══════════════════════════════════════════════╗
║   ▀█▀ █▀▀ █▀ ▄▀█ █░█ █▀▀ █▀▄                 ║
║   ░█░ █▄█ ▄█ █▀█ ▀▄▀ ██▄ █▄▀                 ║
║        SAVED POSTS EXPORT                    ║
╚══════════════════════════════════════════════╝`

	return logoStyle.Width(m.width).Render(logo)
}

func (m *Model) renderLeftColumn() string {
	width := (m.width - 4) / 2
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderStatsPanel(width),
		m.renderCurrentPanel(width),
		m.renderRecentPanel(width),
	)
}

func (m *Model) renderRightColumn() string {
	width := (m.width - 4) / 2
	return m.renderLogsPanel(width)
}

func (m *Model) renderStatsPanel(width int) string {
	title := headerStyle.Render(" EXPORT ")

	stageText := strings.ToUpper(string(m.stage))
	if m.cancelling && !m.finished {
		stageText += " (stopping)"
	}

	bar := m.progress
	bar.Width = width - 8
	if bar.Width < 10 {
		bar.Width = 10
	}

	stats := []string{
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Stage:"), statsValueStyle.Render(stageText)),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Elapsed:"), statsValueStyle.Render(formatDuration(time.Since(m.startTime)))),
		fmt.Sprintf("%s %s / %d", statsLabelStyle.Render("Posts:"), statsValueStyle.Render(fmt.Sprint(m.Processed())), m.total),
		fmt.Sprintf("%s %s  %s %s",
			statsLabelStyle.Render("Saved:"), successStyle.Render(fmt.Sprint(m.completed)),
			statsLabelStyle.Render("Failed:"), errorStyle.Render(fmt.Sprint(m.failed))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("ETA:"), statsValueStyle.Render(formatDuration(m.ETA()))),
		bar.ViewAs(m.Percent()),
	}

	if m.summary != nil {
		stats = append(stats, m.renderSummaryLines()...)
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, stats...)),
	)
}

func (m *Model) renderSummaryLines() []string {
	s := m.summary
	lines := []string{""}
	if s.Username != "" {
		lines = append(lines, fmt.Sprintf("%s @%s", statsLabelStyle.Render("Account:"), s.Username))
	}
	lines = append(lines, fmt.Sprintf("%s %d", statsLabelStyle.Render("Skipped:"), s.Skipped))
	switch {
	case s.ArchiveErr != nil:
		lines = append(lines, warningStyle.Render("Archive failed: "+s.ArchiveErr.Error()))
	case s.ArchivePath != "":
		lines = append(lines, fmt.Sprintf("%s %s (%s)", statsLabelStyle.Render("Archive:"), s.ArchivePath, archive.FormatSize(s.ArchiveSize)))
	}
	return lines
}

func (m *Model) renderCurrentPanel(width int) string {
	title := headerStyle.Render(" NOW ")

	content := lipgloss.NewStyle().Foreground(muted).Render("idle")
	if m.current != nil {
		content = fmt.Sprintf("%s %s %s from @%s",
			m.spinner.View(),
			activeItemStyle.Render(m.current.Media),
			m.current.ID,
			m.current.Owner,
		)
	}

	return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m *Model) renderRecentPanel(width int) string {
	title := headerStyle.Render(" RECENT ")

	if len(m.recent) == 0 {
		content := lipgloss.NewStyle().Foreground(muted).Render("nothing yet")
		return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
	}

	items := make([]string, 0, len(m.recent))
	for i := len(m.recent) - 1; i >= 0; i-- {
		item := m.recent[i]
		line := fmt.Sprintf("%s %s @%s", item.Media, item.ID, item.Owner)
		if item.State == PostFailed {
			items = append(items, errorStyle.Render("✗ "+line))
		} else {
			items = append(items, doneItemStyle.Render("✓ "+line))
		}
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, items...)),
	)
}

func (m *Model) renderLogsPanel(width int) string {
	title := headerStyle.Render(" LOG ")

	start := len(m.logMessages) - 12
	if start < 0 {
		start = 0
	}

	maxMsgLen := width - 25
	var logs []string
	for _, log := range m.logMessages[start:] {
		timestamp := logTimeStyle.Render(log.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", log.Level))

		msg := log.Message
		if maxMsgLen > 3 && len(msg) > maxMsgLen {
			msg = msg[:maxMsgLen-3] + "..."
		}
		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, logMessageStyle.Render(msg)))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = lipgloss.NewStyle().Foreground(muted).Render("No logs yet...")
	}

	logsHeight := m.height - 12
	if logsHeight < 5 {
		logsHeight = 5
	}

	return panelStyle.Width(width).Height(logsHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

func (m *Model) renderHelp() string {
	help := `
  Keys:
    q/ctrl+c - Stop after the post in progress
    ctrl+l   - Clear the log
    ?        - Toggle this help

  Status:
    ` + successStyle.Render("✓") + `        - Post saved
    ` + errorStyle.Render("✗") + `        - Post failed, retried next run
`

	return panelStyle.Width(m.width).Render(help)
}

// formatDuration formats a duration as mm:ss or hh:mm:ss
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
