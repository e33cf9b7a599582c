// Package severity provides the severity levels attached to bundle warnings.
//
// Levels are ordered from least to most severe: Info < Warning.
package severity

import "fmt"

// Severity indicates how much attention a warning deserves.
type Severity int

const (
	// SeverityInfo marks a choice the bundler made on its own, such as a
	// renamed component or a relocated path.
	SeverityInfo Severity = iota

	// SeverityWarning marks output that may not mean what the input meant,
	// such as a reference left unresolved.
	SeverityWarning
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// MarshalText encodes the level by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a level name.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "info":
		*s = SeverityInfo
	case "warning":
		*s = SeverityWarning
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}
