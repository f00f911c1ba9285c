package ui

import (
	"fmt"
	"io"

	"emojiharvest/pkg/export"
)

// PreviewLines lists the first n emojis as "name: url" followed by a
// "...and N more" line when entries were left out.
func PreviewLines(e *export.Emojis, n int) []string {
	shown, more := e.Preview(n)
	lines := make([]string, 0, len(shown)+1)
	for _, entry := range shown {
		lines = append(lines, fmt.Sprintf("%s: %s", entry.Name, entry.URL))
	}
	if more > 0 {
		lines = append(lines, fmt.Sprintf("...and %d more", more))
	}
	return lines
}

// PrintPreview prints the preview panel for an export
func PrintPreview(w io.Writer, title string, e *export.Emojis, n int) {
	fmt.Fprintf(w, "\n%s\n", Cyan("Emojis from "+title))
	fmt.Fprintf(w, "%s\n", Yellow(fmt.Sprintf("%d emojis found", e.Len())))
	for _, line := range PreviewLines(e, n) {
		fmt.Fprintf(w, "  %s\n", Dim(line))
	}
}
