package ui

import (
	"fmt"
	"io"
)

// ASCII logo for the application
const ASCIILogo = `
    ╔════════════════════════════════════════════════════╗
    ║  ███████╗███╗   ███╗ ██████╗      ██╗██╗           ║
    ║  ██╔════╝████╗ ████║██╔═══██╗     ██║██║           ║
    ║  █████╗  ██╔████╔██║██║   ██║     ██║██║  HARVEST  ║
    ║  ██╔══╝  ██║╚██╔╝██║██║   ██║██   ██║██║           ║
    ║  ███████╗██║ ╚═╝ ██║╚██████╔╝╚█████╔╝██║           ║
    ║  ╚══════╝╚═╝     ╚═╝ ╚═════╝  ╚════╝ ╚═╝           ║
    ║     custom emoji export for Slack and Discord      ║
    ╚════════════════════════════════════════════════════╝
`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

// Printer writes colored status lines. A nil writer discards everything,
// which is how --quiet is implemented.
type Printer struct {
	w io.Writer
}

// NewPrinter returns a printer writing to w
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = io.Discard
	}
	return &Printer{w: w}
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer { return p.w }

// Logo prints the ASCII logo with color
func (p *Printer) Logo() {
	fmt.Fprint(p.w, Cyan(ASCIILogo))
}

// Error prints an error message in red
func (p *Printer) Error(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(p.w, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(p.w, Red(msg))
	}
}

// Success prints a success message in green
func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.w, Green(msg))
}

// Info prints a label and value
func (p *Printer) Info(label string, value string) {
	fmt.Fprintf(p.w, "%s: %s\n", Cyan(label), Yellow(value))
}

// Warning prints a warning message in yellow
func (p *Printer) Warning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(p.w, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(p.w, Yellow(msg))
	}
}

// Highlight prints a highlighted message in magenta
func (p *Printer) Highlight(msg string) {
	fmt.Fprintln(p.w, Magenta(msg))
}
