package entities

// Recommendation is the therapy engine output for one patient.
type Recommendation struct {
	MainCondition string             `json:"main_condition"`
	Options       []MedicationOption `json:"options"`
	RedFlags      []string           `json:"red_flags"`
}

// FinalPlan is the consolidated triage outcome. RedFlags is a
// deduplicated union of every source; ImmediateCareAdvice is present
// only when at least one red flag was found.
type FinalPlan struct {
	PlanID              string             `json:"plan_id,omitempty"`
	ConditionProbs      ConditionProbs     `json:"condition_probs"`
	SeverityHint        Severity           `json:"severity_hint"`
	OTCOptions          []MedicationOption `json:"otc_options"`
	RedFlags            []string           `json:"red_flags"`
	Advice              string             `json:"advice"`
	ImmediateCareAdvice string             `json:"immediate_care_advice,omitempty"`
}
