package entities

import (
	"strings"
	"testing"
)

func TestPatientValidate(t *testing.T) {
	tests := []struct {
		name    string
		patient Patient
		wantErr bool
	}{
		{name: "valid", patient: Patient{Age: 30}, wantErr: false},
		{name: "zero age", patient: Patient{Age: 0}, wantErr: false},
		{name: "negative age", patient: Patient{Age: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patient.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: "age", Reason: "must be non-negative, got -1"}

	if !strings.Contains(err.Error(), "age") {
		t.Errorf("Error message should name the field, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "must be non-negative") {
		t.Errorf("Error message should carry the reason, got %q", err.Error())
	}
}
