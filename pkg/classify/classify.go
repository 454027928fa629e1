package classify

import "strings"

// Severity is the display class of a single engine output line.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "info"
	}
}

// Markers written by the engine's logger. Error levels are padded to five
// characters, so a warning line carries "[WARN ]".
var errorMarkers = []string{"[ERROR]", "[FATAL]"}

// Classify maps one line of engine output to a severity.
// Error markers win over warning markers when both appear in the same line.
func Classify(line string) Severity {
	for _, m := range errorMarkers {
		if strings.Contains(line, m) {
			return Error
		}
	}
	if strings.Contains(line, "[WARN") {
		return Warning
	}
	return Info
}
