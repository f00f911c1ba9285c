package tui

import (
	"time"

	"emojiharvest/pkg/harvest"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ProgressMsg carries a harvest progress report
type ProgressMsg harvest.Progress

// StatusMsg replaces the status line
type StatusMsg string

// SectionsMsg opens the section picker
type SectionsMsg []harvest.Section

// ResultMsg shows a finished export
type ResultMsg Result

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// DoneMsg closes the TUI
type DoneMsg struct{}

// TickMsg is sent periodically to update the UI
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		return m, tea.Batch(
			tickCmd(),
			m.spinner.Tick,
		)

	case ProgressMsg:
		m.SetProgress(harvest.Progress(msg))
		return m, nil

	case StatusMsg:
		m.status = string(msg)
		return m, nil

	case SectionsMsg:
		m.SetSections(msg)
		return m, nil

	case ResultMsg:
		m.SetResult(Result(msg))
		return m, nil

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil

	case DoneMsg:
		m.phase = PhaseDone
		return m, tea.Quit
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.phase == PhaseScanning {
			m.cancelScan()
		}
		m.offer(Choice{Kind: ChoiceCancel})
		m.phase = PhaseDone
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		m.logMessages = nil
		return m, nil
	}

	switch m.phase {
	case PhaseScanning:
		switch msg.String() {
		case "esc", "c", "C":
			m.cancelScan()
		}

	case PhasePicking:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case "enter", " ":
			return m, m.pick()
		case "q", "Q", "esc":
			m.offer(Choice{Kind: ChoiceCancel})
			m.phase = PhaseDone
			return m, tea.Quit
		}
	}

	return m, nil
}

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
