package ui

import "emojiharvest/pkg/harvest"

// Reporter receives harvest progress. Both the plain display and the TUI
// implement it.
type Reporter interface {
	Progress(p harvest.Progress)
	Status(msg string)
	Warn(msg string)
}
