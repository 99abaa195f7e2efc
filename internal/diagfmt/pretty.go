package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"argus/internal/diag"
	"argus/internal/source"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	helpColor = color.New(color.FgCyan, color.Bold)
	pathColor = color.New(color.Bold)
	noteColor = color.New(color.FgBlue)
)

// Pretty renders the bag in human-readable form, one block per
// diagnostic:
//
//	<path>:<line>:<col>: <SEV> <Code>: <message>
//	    <context line>
//	    ^~~~~
//	  note: <secondary message> (<path>:<line>:<col>)
//	  help: <help>
//
// The caller is expected to Sort() the bag first.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	restore := color.NoColor
	color.NoColor = !opts.Color
	defer func() { color.NoColor = restore }()

	for _, d := range bag.Items() {
		writeDiagnostic(w, d, fs, opts)
	}
	if n := bag.Len(); n > 0 {
		fmt.Fprintf(w, "%d problem(s) found\n", n)
	}
}

func writeDiagnostic(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	start, end := fs.Resolve(d.Primary)
	f := fs.Get(d.Primary.File)

	fmt.Fprintf(w, "%s: %s %s: %s\n",
		pathColor.Sprintf("%s:%d:%d", displayPath(f, fs, opts.PathMode), start.Line, start.Col),
		severityColor(d.Severity).Sprint(d.Severity),
		severityColor(d.Severity).Sprint(d.Code),
		d.Message)

	if opts.Context {
		writeContext(w, f, start, end, opts)
	}
	for _, n := range d.Notes {
		ns, _ := fs.Resolve(n.Span)
		nf := fs.Get(n.Span.File)
		fmt.Fprintf(w, "  %s %s (%s:%d:%d)\n",
			noteColor.Sprint("note:"), n.Msg,
			displayPath(nf, fs, opts.PathMode), ns.Line, ns.Col)
	}
	if d.Help != "" {
		fmt.Fprintf(w, "  %s %s\n", helpColor.Sprint("help:"), d.Help)
	}
}

// writeContext prints the offending line with a caret run under the span.
func writeContext(w io.Writer, f *source.File, start, end source.LineCol, opts PrettyOpts) {
	line := f.GetLine(start.Line)
	if line == "" {
		return
	}
	display := strings.ReplaceAll(line, "\t", "    ")
	if opts.Width > 4 && runewidth.StringWidth(display) > opts.Width-4 {
		display = runewidth.Truncate(display, opts.Width-4, "…")
	}
	fmt.Fprintf(w, "    %s\n", display)

	prefix := line
	if int(start.Col-1) <= len(line) {
		prefix = line[:start.Col-1]
	}
	pad := runewidth.StringWidth(strings.ReplaceAll(prefix, "\t", "    "))

	span := 1
	if end.Line == start.Line && end.Col > start.Col {
		span = int(end.Col - start.Col)
	}
	if opts.Width > 4 && pad+span > opts.Width-4 {
		span = opts.Width - 4 - pad
		if span < 1 {
			return
		}
	}
	marker := "^"
	if span > 1 {
		marker += strings.Repeat("~", span-1)
	}
	fmt.Fprintf(w, "    %s%s\n", strings.Repeat(" ", pad), errColor.Sprint(marker))
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return errColor
	case diag.SevWarning:
		return warnColor
	default:
		return helpColor
	}
}
