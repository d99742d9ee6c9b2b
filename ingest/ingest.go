// Package ingest validates uploaded image references and extracts
// structured patient facts from free-text report notes: masked PII,
// rule-matched symptoms, age and allergies.
package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nishkal/triage-api/refdata/entities"
)

// defaultAge is assumed when the notes carry no age marker.
const defaultAge = 45

// Precompiled patterns, shared by all requests.
var (
	namePattern    = regexp.MustCompile(`(?i)name\s*\W*(\w*.*)\n`)
	emailPattern   = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)
	agePattern     = regexp.MustCompile(`(?i)age[:\s]*([0-9]{1,3})`)
	allergyPattern = regexp.MustCompile(`(?i)allerg(?:y|ies)[:\s]*(.*)`)
	listSeparator  = regexp.MustCompile(`[,;]`)
)

// symptomKeywords is the fixed rule set for symptom detection.
var symptomKeywords = []string{
	"cough",
	"fever",
	"shortness of breath",
	"chest pain",
	"fatigue",
	"loss of smell",
	"headache",
}

// Result is the ingestion output handed to the decision pipeline.
type Result struct {
	Patient  entities.Patient `json:"patient"`
	Symptoms []string         `json:"symptoms"`
}

// ValidateImageName gates the image reference on the accepted formats.
// Rejection happens here, before any decision component runs.
func ValidateImageName(name string) error {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".png") || strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg") {
		return nil
	}
	return &entities.ValidationError{
		Field:  "xray_file",
		Reason: fmt.Sprintf("invalid image format %q, only PNG, JPG, JPEG allowed", name),
	}
}

// MaskPII redacts names and email addresses from the notes. Other
// content stays intact.
func MaskPII(text string) string {
	text = namePattern.ReplaceAllString(text, "Name: [Name_REDACTED]\n")
	text = emailPattern.ReplaceAllString(text, "[Email_REDACTED]")
	return text
}

// ExtractSymptoms returns the known symptom keywords present in the
// text, in rule order.
func ExtractSymptoms(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, keyword := range symptomKeywords {
		if strings.Contains(lower, keyword) {
			found = append(found, keyword)
		}
	}
	return found
}

// ExtractAge finds an "age: NN" marker. The second return is false
// when the notes carry none.
func ExtractAge(text string) (int, bool) {
	match := agePattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	age, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return age, true
}

// ExtractAllergies parses an "allergies: a, b" marker into lowercase
// terms. No marker yields an empty list, not a sentinel value.
func ExtractAllergies(text string) []string {
	match := allergyPattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}

	var allergies []string
	for _, part := range listSeparator.Split(match[1], -1) {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" && part != "none" {
			allergies = append(allergies, part)
		}
	}
	return allergies
}

// Ingest validates the image reference and turns raw notes into a
// Patient plus detected symptoms. The returned patient is immutable
// from here on.
func Ingest(xrayName, notes string) (Result, error) {
	if err := ValidateImageName(xrayName); err != nil {
		return Result{}, err
	}

	masked := MaskPII(notes)

	age, found := ExtractAge(masked)
	if !found {
		age = defaultAge
	}

	patient := entities.Patient{
		Age:       age,
		Allergies: ExtractAllergies(masked),
		Notes:     masked,
	}
	if err := patient.Validate(); err != nil {
		return Result{}, err
	}

	return Result{
		Patient:  patient,
		Symptoms: ExtractSymptoms(masked),
	}, nil
}
