// Package imaging wraps the image-classification step. The real model
// is an external oracle; this implementation mirrors its contract with
// a filename-keyed rule table so the rest of the pipeline can be built
// and exercised against stable probabilities.
package imaging

import (
	"path/filepath"
	"strings"

	"github.com/nishkal/triage-api/refdata/entities"
)

// Classifier returns condition probabilities and a severity hint for a
// validated image reference.
type Classifier interface {
	Classify(imagePath string) (entities.ConditionProbs, entities.Severity)
}

// MockClassifier derives its output from the image filename.
type MockClassifier struct{}

// NewMockClassifier creates the filename-keyed classifier.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

// Classify inspects the base filename for known condition markers.
func (m *MockClassifier) Classify(imagePath string) (entities.ConditionProbs, entities.Severity) {
	filename := strings.ToLower(filepath.Base(imagePath))

	switch {
	case strings.Contains(filename, "covid"):
		return entities.ConditionProbs{
			"covid_suspect": 0.65,
			"pneumonia":     0.25,
			"normal":        0.10,
		}, entities.SeverityModerate

	case strings.Contains(filename, "pneumonia"):
		return entities.ConditionProbs{
			"pneumonia":     0.70,
			"covid_suspect": 0.15,
			"normal":        0.15,
		}, entities.SeverityModerate

	case strings.Contains(filename, "normal"):
		return entities.ConditionProbs{
			"normal":        0.80,
			"pneumonia":     0.10,
			"covid_suspect": 0.10,
		}, entities.SeverityNone

	default:
		return entities.ConditionProbs{
			"normal":        0.5,
			"pneumonia":     0.444,
			"covid_suspect": 0.333,
		}, entities.SeverityMild
	}
}
