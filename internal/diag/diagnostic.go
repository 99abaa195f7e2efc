package diag

import (
	"argus/internal/source"
)

// Note is a secondary span with its own message ("declared here", ...).
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one typing finding.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Help     string
}
