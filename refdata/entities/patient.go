package entities

import "fmt"

// Patient holds the ingested patient facts. Immutable once built.
type Patient struct {
	Age       int      `json:"age"`
	Allergies []string `json:"allergies"`
	Notes     string   `json:"notes"`
}

// Validate rejects malformed patient input before it reaches the
// decision pipeline. Values are never silently clamped.
func (p *Patient) Validate() error {
	if p.Age < 0 {
		return &ValidationError{Field: "age", Reason: fmt.Sprintf("must be non-negative, got %d", p.Age)}
	}
	return nil
}

// ValidationError marks malformed input reaching the core. Callers
// should translate it to a corrective (4xx) response.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
