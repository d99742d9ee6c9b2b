package ingest

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/nishkal/triage-api/refdata/entities"
)

func TestValidateImageName(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{name: "png", file: "scan.png", wantErr: false},
		{name: "jpg", file: "scan.jpg", wantErr: false},
		{name: "jpeg", file: "scan.jpeg", wantErr: false},
		{name: "uppercase extension", file: "SCAN.PNG", wantErr: false},
		{name: "gif rejected", file: "scan.gif", wantErr: true},
		{name: "pdf rejected", file: "report.pdf", wantErr: true},
		{name: "no extension", file: "scan", wantErr: true},
		{name: "empty", file: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageName(tt.file)
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if err != nil {
				var validationErr *entities.ValidationError
				if !errors.As(err, &validationErr) {
					t.Errorf("Expected ValidationError, got %T", err)
				}
			}
		})
	}
}

func TestMaskPII(t *testing.T) {
	notes := "Name: John Doe\nContact: john.doe@example.com\nAge: 30, cough since Monday"
	masked := MaskPII(notes)

	if strings.Contains(masked, "John Doe") {
		t.Error("Patient name should be redacted")
	}
	if strings.Contains(masked, "john.doe@example.com") {
		t.Error("Email should be redacted")
	}
	if !strings.Contains(masked, "[Name_REDACTED]") {
		t.Error("Expected name redaction marker")
	}
	if !strings.Contains(masked, "[Email_REDACTED]") {
		t.Error("Expected email redaction marker")
	}
	if !strings.Contains(masked, "cough since Monday") {
		t.Error("Non-PII content should stay intact")
	}
}

func TestExtractSymptoms(t *testing.T) {
	tests := []struct {
		name     string
		notes    string
		expected []string
	}{
		{
			name:     "multiple symptoms in rule order",
			notes:    "High FEVER and persistent cough, some fatigue",
			expected: []string{"cough", "fever", "fatigue"},
		},
		{
			name:     "phrase symptom",
			notes:    "complains of shortness of breath",
			expected: []string{"shortness of breath"},
		},
		{
			name:     "no symptoms",
			notes:    "routine checkup",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractSymptoms(tt.notes)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestExtractAge(t *testing.T) {
	tests := []struct {
		name      string
		notes     string
		expected  int
		wantFound bool
	}{
		{name: "colon format", notes: "Age: 62", expected: 62, wantFound: true},
		{name: "space format", notes: "age 7", expected: 7, wantFound: true},
		{name: "lowercase", notes: "patient age:30", expected: 30, wantFound: true},
		{name: "absent", notes: "no demographics here", expected: 0, wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractAge(tt.notes)
			if found != tt.wantFound {
				t.Fatalf("Expected found=%v, got %v", tt.wantFound, found)
			}
			if found && got != tt.expected {
				t.Errorf("Expected age %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestExtractAllergies(t *testing.T) {
	tests := []struct {
		name     string
		notes    string
		expected []string
	}{
		{
			name:     "comma separated",
			notes:    "Allergies: Penicillin, Ibuprofen",
			expected: []string{"penicillin", "ibuprofen"},
		},
		{
			name:     "semicolon separated with none entry",
			notes:    "allergy: Penicillin; None; Aspirin",
			expected: []string{"penicillin", "aspirin"},
		},
		{
			name:     "none only yields empty",
			notes:    "Allergies: None",
			expected: nil,
		},
		{
			name:     "no marker",
			notes:    "no known issues",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractAllergies(tt.notes)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestIngest(t *testing.T) {
	result, err := Ingest("pneumonia_case.png", "Name: Jane Roe\nAge: 34\nAllergies: Penicillin\nSevere cough and fever")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Patient.Age != 34 {
		t.Errorf("Expected age 34, got %d", result.Patient.Age)
	}
	if !reflect.DeepEqual(result.Patient.Allergies, []string{"penicillin"}) {
		t.Errorf("Expected allergies [penicillin], got %v", result.Patient.Allergies)
	}
	if strings.Contains(result.Patient.Notes, "Jane Roe") {
		t.Error("Stored notes should have PII masked")
	}
	if !reflect.DeepEqual(result.Symptoms, []string{"cough", "fever"}) {
		t.Errorf("Expected symptoms [cough fever], got %v", result.Symptoms)
	}
}

func TestIngestDefaultsAge(t *testing.T) {
	result, err := Ingest("scan.jpg", "cough for a week")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Patient.Age != defaultAge {
		t.Errorf("Expected default age %d, got %d", defaultAge, result.Patient.Age)
	}
	if result.Patient.Allergies != nil {
		t.Errorf("Expected no allergies, got %v", result.Patient.Allergies)
	}
}

func TestIngestRejectsBadImage(t *testing.T) {
	_, err := Ingest("scan.bmp", "some notes")

	var validationErr *entities.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if validationErr.Field != "xray_file" {
		t.Errorf("Expected field xray_file, got %s", validationErr.Field)
	}
}
