package entities

import (
	"fmt"
	"strings"
)

// ConditionProbs maps condition names to probabilities in [0,1].
// The values are independent scores and are not required to sum to 1.
type ConditionProbs map[string]float64

// Validate checks that the map is non-empty and every probability is
// within [0,1].
func (p ConditionProbs) Validate() error {
	if len(p) == 0 {
		return &ValidationError{Field: "condition_probs", Reason: "empty probability map"}
	}
	for name, prob := range p {
		if prob < 0 || prob > 1 {
			return &ValidationError{
				Field:  "condition_probs",
				Reason: fmt.Sprintf("probability for %q out of range: %v", name, prob),
			}
		}
	}
	return nil
}

// Dominant returns the condition with the highest probability. Equal
// probabilities are resolved by the lexicographically smaller
// lower-cased name, so the result never depends on map iteration order.
func (p ConditionProbs) Dominant() (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	var best string
	bestProb := -1.0
	for name, prob := range p {
		if prob > bestProb ||
			(prob == bestProb && strings.ToLower(name) < strings.ToLower(best)) {
			best = name
			bestProb = prob
		}
	}
	return best, nil
}
