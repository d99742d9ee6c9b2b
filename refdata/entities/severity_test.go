package entities

import (
	"encoding/json"
	"testing"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input    string
		expected Severity
	}{
		{input: "none", expected: SeverityNone},
		{input: "mild", expected: SeverityMild},
		{input: "moderate", expected: SeverityModerate},
		{input: "critical", expected: SeverityCritical},
		{input: "CRITICAL", expected: SeverityCritical},
		{input: "  mild  ", expected: SeverityMild},
		{input: "severe", expected: SeverityUnknown},
		{input: "", expected: SeverityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseSeverity(tt.input); got != tt.expected {
				t.Errorf("ParseSeverity(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSeverityJSON(t *testing.T) {
	data, err := json.Marshal(SeverityCritical)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(data) != `"critical"` {
		t.Errorf("Expected \"critical\", got %s", data)
	}

	var s Severity
	if err := json.Unmarshal([]byte(`"moderate"`), &s); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s != SeverityModerate {
		t.Errorf("Expected moderate, got %v", s)
	}

	// Unknown strings parse as unknown rather than failing
	if err := json.Unmarshal([]byte(`"weird"`), &s); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s != SeverityUnknown {
		t.Errorf("Expected unknown, got %v", s)
	}
}

func TestSeverityDisplayText(t *testing.T) {
	if got := SeverityCritical.DisplayText(); got != "Critical - urgent attention required" {
		t.Errorf("Unexpected critical display text: %q", got)
	}
	if got := SeverityNone.DisplayText(); got != "No critical condition detected" {
		t.Errorf("Unexpected none display text: %q", got)
	}
}
