package tui

import (
	"fmt"
	"strings"
	"time"

	"emojiharvest/pkg/harvest"
	"emojiharvest/pkg/ui"

	"github.com/charmbracelet/lipgloss"
)

// View renders the entire TUI
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, m.renderLogo())

	var main string
	switch m.phase {
	case PhasePicking:
		main = m.renderPicker()
	default:
		main = m.renderScanning()
	}

	width := (m.width - 4) / 2
	left := lipgloss.JoinVertical(lipgloss.Left, main)
	if m.result != nil {
		left = lipgloss.JoinVertical(lipgloss.Left, main, m.renderPreview(width))
	}
	sections = append(sections, lipgloss.JoinHorizontal(
		lipgloss.Top,
		left,
		"  ",
		m.renderLogsPanel(width),
	))

	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else {
		sections = append(sections, helpStyle.Render("Press ? for help"))
	}

	return baseStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

func (m Model) renderLogo() string {
	return logoStyle.Render("EMOJI HARVEST • " + m.title)
}

func (m Model) renderScanning() string {
	title := titleStyle.Render(" SCANNING EMOJIS ")

	lines := []string{
		fmt.Sprintf("%s %s", m.spinner.View(), statsValueStyle.Render(m.status)),
		"",
		m.bar.ViewAs(m.percent()),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Pass:"), statsValueStyle.Render(passName(m.last.Pass))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Attempt:"), statsValueStyle.Render(fmt.Sprintf("%d/%d", m.last.Attempt, m.last.MaxAttempts))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Elapsed:"), statsValueStyle.Render(formatDuration(time.Since(m.sessionStartTime)))),
	}
	if m.phase == PhaseScanning {
		lines = append(lines, "", warningStyle.Render("esc: cancel scan"))
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func passName(p string) string {
	if p == "" {
		return "-"
	}
	return p
}

func (m Model) renderPicker() string {
	title := titleStyle.Render(" SELECT SERVER ")

	lines := []string{statsValueStyle.Render(m.status), ""}
	for i, c := range m.choices {
		label := c.Label(m.sections)
		switch {
		case i == m.cursor:
			lines = append(lines, choiceActiveStyle.Render("› "+label))
		case c.Kind == ChoiceCancel:
			lines = append(lines, choiceDangerStyle.Render("  "+label))
		default:
			lines = append(lines, choiceStyle.Render("  "+label))
		}
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (m Model) renderPreview(width int) string {
	r := m.result
	title := titleStyle.Render(" EMOJIS FROM " + strings.ToUpper(r.Title) + " ")

	count := 0
	var preview []string
	if r.Emojis != nil {
		count = r.Emojis.Len()
		preview = ui.PreviewLines(r.Emojis, m.previewCount)
	}

	lines := []string{
		successStyle.Render(fmt.Sprintf("%d emojis found", count)),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Saved to:"), statsValueStyle.Render(r.Path)),
	}
	if r.Reason == harvest.ReasonCancelled {
		lines = append(lines, warningStyle.Render("Scan was cancelled, the export is partial"))
	}
	lines = append(lines, "")
	for _, p := range preview {
		lines = append(lines, previewStyle.Render(truncate(p, width-6)))
	}

	return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (m Model) renderLogsPanel(width int) string {
	title := titleStyle.Render(" LOG ")

	maxLogs := 15
	start := 0
	if len(m.logMessages) > maxLogs {
		start = len(m.logMessages) - maxLogs
	}

	var logs []string
	for _, msg := range m.logMessages[start:] {
		timestamp := logTimestampStyle.Render(msg.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(msg.Color).Bold(true).Render(fmt.Sprintf("%-7s", msg.Level))
		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, truncate(msg.Message, width-24)))
	}
	if len(logs) == 0 {
		logs = append(logs, previewStyle.Render("No messages yet"))
	}

	return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", lipgloss.JoinVertical(lipgloss.Left, logs...)))
}

func (m Model) renderHelp() string {
	help := []string{
		"↑/k ↓/j  move",
		"enter    select",
		"esc      cancel scan / close picker",
		"ctrl+l   clear log",
		"ctrl+c   quit",
		"?        toggle help",
	}
	return helpStyle.Render(strings.Join(help, "\n"))
}

func truncate(s string, n int) string {
	if n <= 3 || lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// formatDuration formats a duration
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
