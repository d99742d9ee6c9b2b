// Package recommend maps detected conditions and patient constraints
// to safe OTC medication options. Contraindicated options are flagged,
// never hidden: dropping them silently would lose the warning.
package recommend

import (
	"strings"

	"github.com/nishkal/triage-api/refdata/entities"
)

// spO2Marker is the literal vital-sign flag the ingestion layer embeds
// in notes. The scan is a narrow substring check, not clinical parsing.
const spO2Marker = "SpO2 < 92%"

// Engine filters the medication catalog of one snapshot.
type Engine struct {
	snapshot *entities.Snapshot
}

// NewEngine builds a recommendation engine over a snapshot.
func NewEngine(snapshot *entities.Snapshot) *Engine {
	return &Engine{snapshot: snapshot}
}

// Recommend selects the dominant condition and produces annotated
// medication options for the patient. An empty options list is a valid
// state ("no suitable OTC options"), distinct from an error.
func (e *Engine) Recommend(probs entities.ConditionProbs, patient entities.Patient) (entities.Recommendation, error) {
	if err := patient.Validate(); err != nil {
		return entities.Recommendation{}, err
	}

	mainCondition, err := probs.Dominant()
	if err != nil {
		return entities.Recommendation{}, err
	}

	options := make([]entities.MedicationOption, 0)
	for _, med := range e.snapshot.Medications {
		if !strings.EqualFold(med.Indication, mainCondition) {
			continue
		}
		if patient.Age < med.AgeMin {
			continue
		}

		option := entities.MedicationOption{
			SKU:             med.SKU,
			DrugName:        med.DrugName,
			Dose:            med.Dose,
			Freq:            med.Freq,
			Contraindicated: contraindicated(med.ContraAllergyKeywords, patient.Allergies),
			Warnings:        []string{"contains " + strings.ToLower(med.DrugName)},
		}
		if option.Contraindicated {
			option.Warnings = append(option.Warnings, "contraindicated due to listed allergy")
		}

		options = append(options, option)
	}

	var redFlags []string
	if strings.Contains(patient.Notes, spO2Marker) {
		redFlags = append(redFlags, spO2Marker)
	}

	return entities.Recommendation{
		MainCondition: mainCondition,
		Options:       options,
		RedFlags:      redFlags,
	}, nil
}

// contraindicated reports whether any allergy term matches any
// contra-allergy keyword, case-insensitively.
func contraindicated(keywords, allergies []string) bool {
	for _, keyword := range keywords {
		for _, allergy := range allergies {
			if strings.EqualFold(strings.TrimSpace(keyword), strings.TrimSpace(allergy)) {
				return true
			}
		}
	}
	return false
}
