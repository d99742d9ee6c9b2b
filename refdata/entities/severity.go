package entities

import (
	"encoding/json"
	"strings"
)

// Severity is the closed imaging severity scale. Internal logic keys on
// the enum values only; display strings live in DisplayText.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityNone
	SeverityMild
	SeverityModerate
	SeverityCritical
)

// ParseSeverity maps a severity hint string to the enum. Anything
// outside the known set parses as unknown rather than failing.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return SeverityNone
	case "mild":
		return SeverityMild
	case "moderate":
		return SeverityModerate
	case "critical":
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityMild:
		return "mild"
	case SeverityModerate:
		return "moderate"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// DisplayText returns the user-facing wording for a severity level.
func (s Severity) DisplayText() string {
	switch s {
	case SeverityNone:
		return "No critical condition detected"
	case SeverityMild:
		return "Mild concern"
	case SeverityModerate:
		return "Moderate concern"
	case SeverityCritical:
		return "Critical - urgent attention required"
	default:
		return "Unknown"
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseSeverity(raw)
	return nil
}
