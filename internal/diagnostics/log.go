package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Printer writes fatal errors and, when Verbose is set, stage-progress
// notes to an output stream. Grounded on the teacher's cmd/funxy/main.go
// convention of reporting everything through bare fmt.Fprintf(os.Stderr,
// …) — no structured logging library appears anywhere in the corpus, so
// none is introduced here (see DESIGN.md).
type Printer struct {
	Out     io.Writer
	Verbose bool
	color   bool
}

// NewPrinter builds a Printer writing to w, coloring diagnostic messages
// only when w is an *os.File attached to a terminal.
func NewPrinter(w io.Writer, verbose bool) *Printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Printer{Out: w, Verbose: verbose, color: color}
}

// Fatal prints a pipeline-ending error.
func (p *Printer) Fatal(err error) {
	if de, ok := err.(*Error); ok {
		fmt.Fprintln(p.Out, p.colorize(string(de.Phase), de.Error()))
		return
	}
	fmt.Fprintln(p.Out, err.Error())
}

// Note prints a progress note, visible only when Verbose is set.
func (p *Printer) Note(format string, args ...interface{}) {
	if !p.Verbose {
		return
	}
	fmt.Fprintf(p.Out, format+"\n", args...)
}

func (p *Printer) colorize(tag, message string) string {
	if !p.color {
		return message
	}
	const red = "\x1b[31m"
	const reset = "\x1b[0m"
	return red + message + reset
}
