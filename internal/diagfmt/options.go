package diagfmt

import (
	"io"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"argus/internal/source"
)

// PathMode controls how file paths render in reports.
type PathMode uint8

const (
	// PathModeAuto renders relative when the file is under the base dir,
	// absolute otherwise.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts tunes the human-readable formatter.
type PrettyOpts struct {
	Color    bool
	Context  bool
	PathMode PathMode
	// Width caps the context line; 0 means unlimited.
	Width int
}

// AutoOpts detects terminal capabilities for the writer: color and width
// when it is a TTY, plain unlimited output otherwise.
func AutoOpts(w io.Writer) PrettyOpts {
	opts := PrettyOpts{Context: true, PathMode: PathModeAuto}
	f, ok := w.(*os.File)
	if !ok {
		return opts
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return opts
	}
	opts.Color = true
	if width, _, err := term.GetSize(fd); err == nil && width > 0 {
		opts.Width = width
	}
	return opts
}

// displayPath renders a file path per the mode.
func displayPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return abs
		}
		return f.Path
	case PathModeBasename:
		return filepath.Base(f.Path)
	case PathModeRelative, PathModeAuto:
		if rel, err := filepath.Rel(fs.BaseDir(), f.Path); err == nil && filepath.IsLocal(rel) {
			return rel
		}
		return f.Path
	}
	return f.Path
}
