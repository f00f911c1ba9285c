package tui

import (
	"fmt"
	"time"

	"emojiharvest/pkg/export"
	"emojiharvest/pkg/harvest"
	"emojiharvest/pkg/ui"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Phase is what the screen is currently showing
type Phase int

const (
	PhaseScanning Phase = iota
	PhasePicking
	PhaseDone
)

// ChoiceKind is an entry of the section picker
type ChoiceKind int

const (
	ChoiceAll ChoiceKind = iota
	ChoiceSection
	ChoiceRescan
	ChoiceCancel
)

// Choice is what the user picked
type Choice struct {
	Kind    ChoiceKind
	Section string
}

// Result is a finished export shown in the preview panel
type Result struct {
	Title  string
	Emojis *export.Emojis
	Path   string
	Size   int64
	Reason harvest.Reason
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// Model is the bubbletea model behind the harvester screen
type Model struct {
	spinner spinner.Model
	bar     progress.Model

	title    string
	phase    Phase
	status   string
	last     harvest.Progress
	sections int
	choices  []Choice
	cursor   int
	result   *Result

	previewCount     int
	sessionStartTime time.Time

	width          int
	height         int
	showHelp       bool
	logMessages    []LogMessage
	maxLogMessages int

	onCancel func()
	picked   chan Choice
}

// NewModel creates the model. onCancel is called when the user stops a
// running scan and may be nil.
func NewModel(title string, previewCount int, onCancel func()) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	return Model{
		spinner:          s,
		bar:              bar,
		title:            title,
		phase:            PhaseScanning,
		status:           "Initializing...",
		previewCount:     previewCount,
		sessionStartTime: time.Now(),
		maxLogMessages:   50,
		onCancel:         onCancel,
		picked:           make(chan Choice, 1),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Choices delivers picker selections
func (m *Model) Choices() <-chan Choice {
	return m.picked
}

// Label is the text shown for a choice
func (c Choice) Label(sections int) string {
	switch c.Kind {
	case ChoiceAll:
		return fmt.Sprintf("Download ALL (%d servers)", sections)
	case ChoiceSection:
		return c.Section
	case ChoiceRescan:
		return "Rescan"
	default:
		return "Cancel"
	}
}

// SetSections switches to the picker
func (m *Model) SetSections(sections []harvest.Section) {
	m.sections = len(sections)
	m.choices = m.choices[:0]
	if len(sections) > 0 {
		m.choices = append(m.choices, Choice{Kind: ChoiceAll})
	}
	for _, s := range sections {
		m.choices = append(m.choices, Choice{Kind: ChoiceSection, Section: s.Name})
	}
	m.choices = append(m.choices, Choice{Kind: ChoiceRescan}, Choice{Kind: ChoiceCancel})
	m.cursor = 0
	m.phase = PhasePicking
	m.status = fmt.Sprintf("Scan complete! Found %d sections.", len(sections))
}

// SetProgress records the latest progress report
func (m *Model) SetProgress(p harvest.Progress) {
	m.last = p
	m.status = ui.StatusLine(p)
}

// SetResult shows a finished export
func (m *Model) SetResult(r Result) {
	m.result = &r
	n := 0
	if r.Emojis != nil {
		n = r.Emojis.Len()
	}
	m.AddLogMessage("SUCCESS", fmt.Sprintf("Saved %d emojis to %s", n, r.Path))
}

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   levelColor(level),
	})

	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// offer hands a choice to the controller without blocking the UI
func (m *Model) offer(c Choice) bool {
	select {
	case m.picked <- c:
		return true
	default:
		return false
	}
}

// pick hands the selected choice to the controller and shows what happens next
func (m *Model) pick() tea.Cmd {
	if len(m.choices) == 0 {
		return nil
	}
	choice := m.choices[m.cursor]
	if choice.Kind == ChoiceCancel {
		m.offer(choice)
		m.phase = PhaseDone
		return tea.Quit
	}
	if !m.offer(choice) {
		// the previous choice has not been consumed yet
		return nil
	}

	switch choice.Kind {
	case ChoiceAll:
		m.status = "Loading emojis from all servers..."
	case ChoiceSection:
		m.status = fmt.Sprintf("Loading emojis from %q...", choice.Section)
	case ChoiceRescan:
		m.status = "Rescanning sections..."
		m.result = nil
	}
	m.last = harvest.Progress{}
	m.phase = PhaseScanning
	return nil
}

// cancelScan stops the running harvest, keeping what it collected
func (m *Model) cancelScan() {
	if m.onCancel != nil {
		m.onCancel()
	}
	m.status = "Cancelling..."
	m.AddLogMessage("WARN", "Scan cancelled by user")
}

func (m Model) percent() float64 {
	if m.last.MaxAttempts <= 0 {
		return 0
	}
	p := float64(m.last.Attempt) / float64(m.last.MaxAttempts)
	if p > 1 {
		return 1
	}
	return p
}
