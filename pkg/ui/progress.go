package ui

import (
	"fmt"
	"strings"

	"emojiharvest/pkg/harvest"

	"github.com/dustin/go-humanize"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// StatusLine renders the one-line status shown while a pass runs
func StatusLine(p harvest.Progress) string {
	switch p.Pass {
	case "discover":
		return fmt.Sprintf("Found %s sections... Scrolling (%d/%d)",
			humanize.Comma(int64(p.Collected)), p.Attempt, p.MaxAttempts)
	default:
		return fmt.Sprintf("Found %s emojis", humanize.Comma(int64(p.Collected)))
	}
}

// AttemptBar returns a bar showing how much of the attempt budget is used
func AttemptBar(p harvest.Progress, width int) string {
	filled := 0
	if p.MaxAttempts > 0 {
		filled = p.Attempt * width / p.MaxAttempts
	}
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return fmt.Sprintf("[%s%s] %d/%d",
		strings.Repeat(ProgressBar, filled),
		strings.Repeat(ProgressEmpty, width-filled),
		p.Attempt, p.MaxAttempts)
}
