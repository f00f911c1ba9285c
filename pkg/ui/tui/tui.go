// Package tui is the full-screen interface: a scanning view that can cancel
// the running harvest and a section picker for Discord.
package tui

import (
	"fmt"
	"time"

	"emojiharvest/pkg/harvest"

	tea "github.com/charmbracelet/bubbletea"
)

// TUI represents the terminal user interface
type TUI struct {
	program *tea.Program
	model   *Model
}

// NewTUI creates a TUI. onCancel stops the running harvest.
func NewTUI(title string, previewCount int, onCancel func(), opts ...tea.ProgramOption) *TUI {
	model := NewModel(title, previewCount, onCancel)
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	program := tea.NewProgram(&model, opts...)

	return &TUI{
		program: program,
		model:   &model,
	}
}

// Start runs the TUI until it quits
func (t *TUI) Start() error {
	go func() {
		// Send initial tick to start the spinner
		time.Sleep(100 * time.Millisecond)
		t.program.Send(TickMsg(time.Now()))
	}()

	_, err := t.program.Run()
	return err
}

// Stop stops the TUI gracefully
func (t *TUI) Stop() {
	t.program.Quit()
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// Choices delivers the user's picker selections
func (t *TUI) Choices() <-chan Choice {
	return t.model.Choices()
}

// Progress implements ui.Reporter
func (t *TUI) Progress(p harvest.Progress) {
	t.Send(ProgressMsg(p))
}

// Status implements ui.Reporter
func (t *TUI) Status(msg string) {
	t.Send(StatusMsg(msg))
	t.Send(LogMsg{Level: "INFO", Message: msg})
}

// Warn implements ui.Reporter
func (t *TUI) Warn(msg string) {
	t.Send(LogMsg{Level: "WARN", Message: msg})
}

// ShowSections opens the section picker
func (t *TUI) ShowSections(sections []harvest.Section) {
	t.Send(SectionsMsg(sections))
}

// ShowResult displays a finished export
func (t *TUI) ShowResult(r Result) {
	t.Send(ResultMsg(r))
}

// Done closes the TUI
func (t *TUI) Done() {
	t.Send(DoneMsg{})
}

// LogError logs an error message
func (t *TUI) LogError(format string, args ...interface{}) {
	t.Send(LogMsg{Level: "ERROR", Message: fmt.Sprintf(format, args...)})
}
