package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevHelp is for advisory diagnostics that suggest an improvement.
	SevHelp Severity = iota
	// SevWarning is for findings that are suspicious but not fatal.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevHelp:
		return "HELP"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
