package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"emojiharvest/pkg/harvest"

	"github.com/dustin/go-humanize"
)

// ProgressDisplay is the plain terminal reporter used when the TUI is off
type ProgressDisplay struct {
	mu        sync.Mutex
	w         io.Writer
	title     string
	last      harvest.Progress
	startTime time.Time
	lineOpen  bool
	isDebug   bool
}

// NewProgressDisplay creates a display writing to w
func NewProgressDisplay(w io.Writer, title string, debug bool) *ProgressDisplay {
	if w == nil {
		w = io.Discard
	}
	return &ProgressDisplay{
		w:         w,
		title:     title,
		startTime: time.Now(),
		isDebug:   debug,
	}
}

// Progress redraws the status line
func (p *ProgressDisplay) Progress(pr harvest.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.last = pr
	if p.isDebug {
		// debug logging already prints every sample
		return
	}
	line := fmt.Sprintf("%s %s %s • %s",
		Cyan(p.title),
		Dim(pr.Pass),
		AttemptBar(pr, 20),
		StatusLine(pr),
	)
	fmt.Fprintf(p.w, "\r%s\r%s", strings.Repeat(" ", 100), line)
	p.lineOpen = true
}

// Status prints a message on its own line
func (p *ProgressDisplay) Status(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.breakLine()
	fmt.Fprintf(p.w, "%s %s\n", Magenta("→"), msg)
}

// Warn prints a warning on its own line
func (p *ProgressDisplay) Warn(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.breakLine()
	fmt.Fprintf(p.w, "%s %s\n", Yellow("⚠"), msg)
}

func (p *ProgressDisplay) breakLine() {
	if p.lineOpen {
		fmt.Fprintln(p.w)
		p.lineOpen = false
	}
}

// Complete prints the summary of a finished export
func (p *ProgressDisplay) Complete(label string, count int, path string, size int64, reason harvest.Reason) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.breakLine()

	fmt.Fprintf(p.w, "\n%s Saved %s emojis from %s\n",
		Green("✓"),
		humanize.Comma(int64(count)),
		label,
	)
	fmt.Fprintf(p.w, "  %s %s (%s) in %s\n",
		Dim("•"),
		path,
		humanize.Bytes(uint64(size)),
		formatDuration(time.Since(p.startTime)),
	)
	if reason == harvest.ReasonCancelled {
		fmt.Fprintf(p.w, "  %s %s\n", Dim("•"), Yellow("scan was cancelled, the export is partial"))
	}
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
