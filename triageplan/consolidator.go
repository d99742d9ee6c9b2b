// Package triageplan merges imaging severity, therapy red flags and an
// independent scan of the raw notes into one final plan. The note scan
// runs even when the therapy engine reported nothing, as defense in
// depth against a silent upstream miss.
package triageplan

import (
	"strings"

	"github.com/nishkal/triage-api/refdata/entities"
)

// Advice strings attached to every plan. The disclaimer is fixed and
// non-diagnostic.
const (
	Disclaimer          = "This is not medical advice. Consult a healthcare professional for diagnosis and treatment."
	ImmediateCareAdvice = "Red flags detected. Advise immediate medical attention."
	imagingRedFlag      = "Critical severity reported on imaging"
)

// redFlagPhrases is the fixed list scanned for in patient notes,
// matched as case-insensitive substrings.
var redFlagPhrases = []string{
	"chest pain",
	"shortness of breath",
	"severe cough",
	"high fever",
	"loss of consciousness",
}

// Consolidator builds final plans. Pure given its inputs; no I/O.
type Consolidator struct{}

// NewConsolidator creates a plan consolidator.
func NewConsolidator() *Consolidator {
	return &Consolidator{}
}

// ScanNotes returns the red-flag phrases present in the notes, in
// phrase-list order.
func (c *Consolidator) ScanNotes(notes string) []string {
	lower := strings.ToLower(notes)
	var found []string
	for _, phrase := range redFlagPhrases {
		if strings.Contains(lower, phrase) {
			found = append(found, phrase)
		}
	}
	return found
}

// Consolidate merges all partial outputs into a final plan. Red flags
// are a deduplicated union of the recommendation flags, the note scan
// and the imaging escalation, kept in first-seen order so output is
// deterministic. ImmediateCareAdvice is set only when the set is
// non-empty.
func (c *Consolidator) Consolidate(
	severity entities.Severity,
	probs entities.ConditionProbs,
	recommendationRedFlags []string,
	notes string,
	options []entities.MedicationOption,
) entities.FinalPlan {

	redFlags := make([]string, 0)
	seen := make(map[string]bool)
	addFlag := func(flag string) {
		if flag == "" || seen[flag] {
			return
		}
		seen[flag] = true
		redFlags = append(redFlags, flag)
	}

	for _, flag := range recommendationRedFlags {
		addFlag(flag)
	}
	for _, flag := range c.ScanNotes(notes) {
		addFlag(flag)
	}
	if severity == entities.SeverityCritical {
		addFlag(imagingRedFlag)
	}

	plan := entities.FinalPlan{
		ConditionProbs: probs,
		SeverityHint:   severity,
		OTCOptions:     options,
		RedFlags:       redFlags,
		Advice:         Disclaimer,
	}
	if len(redFlags) > 0 {
		plan.ImmediateCareAdvice = ImmediateCareAdvice
	}

	return plan
}
